// seed_parts genera un script SQL idempotente para cargar el catálogo de repuestos
// a partir de la lista de precios del proveedor en CSV (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_parts [-encoding auto|utf8|latin1] [-out archivo.sql] lista.csv
//
// Columnas reconocidas por encabezado: codigo, nombre, precio, costo, stock, minimo, categoria.
// Separador ';' o ','. Con ';' los decimales pueden venir con coma (1.234,50).
// El stock solo se carga al crear el repuesto y queda registrado como recepción.
package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type partRow struct {
	Code     string
	Name     string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Stock    int
	Min      int
	Category string
}

func main() {
	encoding := flag.String("encoding", "auto", "codificación del CSV: auto, utf8 o latin1")
	outPath := flag.String("out", "", "archivo de salida (vacío = stdout)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_parts [-encoding auto|utf8|latin1] [-out archivo.sql] lista.csv")
		os.Exit(2)
	}
	csvPath := flag.Arg(0)

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	r, err := decodeReader(raw, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Codificación: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRows(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Procesar CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := writeSQL(out, rows, filepath.Base(csvPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d repuestos\n", len(rows))
}

// decodeReader convierte el contenido a UTF-8. En modo auto, lo que no es UTF-8 válido se trata como Latin-1.
func decodeReader(raw []byte, encoding string) (io.Reader, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")) // BOM
	switch strings.ToLower(encoding) {
	case "utf8", "utf-8":
		return bytes.NewReader(raw), nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	case "auto", "":
		if utf8.Valid(raw) {
			return bytes.NewReader(raw), nil
		}
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

var headerAliases = map[string]string{
	"codigo": "code", "código": "code", "code": "code", "ref": "code", "referencia": "code",
	"nombre": "name", "descripcion": "name", "descripción": "name", "name": "name",
	"precio": "price", "price": "price", "pvp": "price",
	"costo": "cost", "cost": "cost",
	"stock": "stock", "existencias": "stock", "cantidad": "stock",
	"minimo": "min", "mínimo": "min", "min": "min",
	"categoria": "category", "categoría": "category", "category": "category",
}

// parseRows lee el CSV con encabezado. Filas sin código o nombre se descartan; un código repetido
// conserva la última aparición.
func parseRows(r io.Reader) ([]partRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	firstLine, _, _ := strings.Cut(string(content), "\n")
	delim := ','
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		delim = ';'
	}

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		if key, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[key] = i
		}
	}
	for _, req := range []string{"code", "name", "price"} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("falta la columna %q en el encabezado", req)
		}
	}

	field := func(rec []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	index := make(map[string]int)
	var rows []partRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		code, name := field(rec, "code"), field(rec, "name")
		if code == "" || name == "" {
			continue
		}
		price, err := parseAmount(field(rec, "price"), delim == ';')
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio: %w", line, err)
		}
		cost, err := parseAmount(field(rec, "cost"), delim == ';')
		if err != nil {
			return nil, fmt.Errorf("línea %d: costo: %w", line, err)
		}
		stock, err := parseCount(field(rec, "stock"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: stock: %w", line, err)
		}
		minQty, err := parseCount(field(rec, "min"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: mínimo: %w", line, err)
		}
		row := partRow{Code: code, Name: name, Price: price, Cost: cost, Stock: stock, Min: minQty, Category: field(rec, "category")}
		if i, dup := index[code]; dup {
			rows[i] = row
			continue
		}
		index[code] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}

// parseAmount acepta "1234.5", "$ 1,234.50" y, con decimalComma, "1.234,50".
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, nil
	}
	if decimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor negativo %s", s)
	}
	return d.Round(2), nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("valor negativo %d", n)
	}
	return n, nil
}

// writeSQL escribe un INSERT ... ON CONFLICT (code) DO UPDATE por repuesto. La rama UPDATE no toca
// stock_quantity; el stock inicial y su movimiento solo se insertan cuando la fila es nueva.
func writeSQL(w io.Writer, rows []partRow, source string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de repuestos\n")
	fmt.Fprintf(&b, "-- Generado desde %s por cmd/seed_parts\n\n", source)
	b.WriteString("BEGIN;\n\n")
	for _, p := range rows {
		category := "NULL"
		if p.Category != "" {
			category = fmt.Sprintf("(SELECT id FROM categories WHERE code = '%s')", escapeSQL(p.Category))
		}
		fmt.Fprintf(&b, "WITH ins AS (\n")
		fmt.Fprintf(&b, "  INSERT INTO parts (id, code, name, category_id, price, cost, stock_quantity, min_quantity)\n")
		fmt.Fprintf(&b, "  VALUES (gen_random_uuid(), '%s', '%s', %s, %s, %s, %d, %d)\n",
			escapeSQL(p.Code), escapeSQL(p.Name), category, p.Price.StringFixed(2), p.Cost.StringFixed(2), p.Stock, p.Min)
		b.WriteString("  ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, category_id = EXCLUDED.category_id,\n")
		b.WriteString("    price = EXCLUDED.price, cost = EXCLUDED.cost, min_quantity = EXCLUDED.min_quantity, updated_at = now()\n")
		b.WriteString("  RETURNING id, (xmax = 0) AS inserted\n)\n")
		if p.Stock > 0 {
			b.WriteString("INSERT INTO stock_movements (id, part_id, type, quantity, reference)\n")
			fmt.Fprintf(&b, "SELECT gen_random_uuid(), id, 'receipt', %d, '%s' FROM ins WHERE inserted;\n\n",
				p.Stock, escapeSQL("seed:"+source))
		} else {
			b.WriteString("SELECT id FROM ins;\n\n")
		}
	}
	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
