package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeReader_Latin1Automatico(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("código;nombre;precio\nA-1;Bujía;1,50\n")
	require.NoError(t, err)

	r, err := decodeReader([]byte(latin1), "auto")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(got), "Bujía")
	assert.Contains(t, string(got), "código")
}

func TestDecodeReader_UTF8ConBOM(t *testing.T) {
	r, err := decodeReader([]byte("\xef\xbb\xbfcodigo,nombre,precio\n"), "auto")
	require.NoError(t, err)
	got, _ := io.ReadAll(r)
	assert.Equal(t, "codigo,nombre,precio\n", string(got))

	_, err = decodeReader(nil, "ebcdic")
	assert.Error(t, err)
}

func TestParseRows_PuntoYComa(t *testing.T) {
	csvData := "Código;Nombre;Precio;Costo;Stock;Mínimo;Categoría\n" +
		"PF-001;Pastillas de freno;1.250,50;900;10;2;FRN\n" +
		";sin código;1;1;1;1;\n" +
		"PF-001;Pastillas de freno cerámicas;1.300,00;950;12;2;FRN\n" +
		"FA-200;Filtro de aire;45,9;;;;\n"
	rows, err := parseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "PF-001", rows[0].Code)
	assert.Equal(t, "Pastillas de freno cerámicas", rows[0].Name, "el código repetido conserva la última fila")
	assert.Equal(t, "1300.00", rows[0].Price.StringFixed(2))
	assert.Equal(t, 12, rows[0].Stock)
	assert.Equal(t, "FRN", rows[0].Category)

	assert.Equal(t, "45.90", rows[1].Price.StringFixed(2))
	assert.True(t, rows[1].Cost.IsZero())
	assert.Equal(t, 0, rows[1].Stock)
}

func TestParseRows_ComaYErrores(t *testing.T) {
	rows, err := parseRows(strings.NewReader("codigo,nombre,precio\nX1,Correa,\"1,234.5\"\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1234.50", rows[0].Price.StringFixed(2))

	_, err = parseRows(strings.NewReader("codigo,precio\nX1,10\n"))
	assert.ErrorContains(t, err, "name")

	_, err = parseRows(strings.NewReader("codigo,nombre,precio,stock\nX1,Correa,10,-3\n"))
	assert.Error(t, err)
}

func TestWriteSQL_Idempotente(t *testing.T) {
	rows, err := parseRows(strings.NewReader("codigo;nombre;precio;stock;categoria\nO'R-1;Aceite O'Reilly;10;4;LUB\nS-2;Sensor;5;0;\n"))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeSQL(&b, rows, "lista.csv"))
	sql := b.String()

	assert.Contains(t, sql, "'O''R-1', 'Aceite O''Reilly'")
	assert.Contains(t, sql, "(SELECT id FROM categories WHERE code = 'LUB')")
	assert.Equal(t, 2, strings.Count(sql, "ON CONFLICT (code) DO UPDATE"))
	assert.Equal(t, 1, strings.Count(sql, "INSERT INTO stock_movements"), "solo el repuesto con stock genera movimiento")
	assert.Contains(t, sql, "'receipt', 4, 'seed:lista.csv' FROM ins WHERE inserted")
	assert.NotContains(t, sql, "stock_quantity = EXCLUDED", "la rama UPDATE no toca el stock")
	assert.True(t, strings.HasPrefix(sql, "-- Catálogo de repuestos"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}
