package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/usecase"
	"github.com/jhoicas/Taller-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Taller-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Taller-api/pkg/jwt"
)

// buildAPI arma la API completa sobre el almacén en memoria.
func buildAPI() *fiber.App {
	store := memory.NewStore()
	ledgerUC := ledger.NewRepairLedgerUseCase(store)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RepairUC:   usecase.NewRepairUseCase(store.RepairRepository(), store.RepairPartRepository()),
		PartUC:     usecase.NewPartUseCase(store.PartRepository(), store.CategoryRepository(), store.StockMovementRepository(), store),
		CategoryUC: usecase.NewCategoryUseCase(store.CategoryRepository()),
		LedgerUC:   ledgerUC,
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
	})
	return app
}

type apiResult struct {
	status int
	body   map[string]any
	raw    []byte
}

func call(t *testing.T, app *fiber.App, method, path, role string, payload any) apiResult {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	res := apiResult{status: resp.StatusCode, raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &res.body), string(raw))
	}
	return res
}

func decField(t *testing.T, body map[string]any, key string) decimal.Decimal {
	t.Helper()
	var s string
	switch v := body[key].(type) {
	case string:
		s = v
	case float64:
		s = decimal.NewFromFloat(v).String()
	default:
		t.Fatalf("campo %s ausente o de tipo inesperado: %#v", key, body[key])
	}
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func mustDec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedViaAPI crea una categoría, un repuesto (stock 10 a 50.00) y una orden con mano de obra 80.
func seedViaAPI(t *testing.T, app *fiber.App) (partID, repairID string) {
	t.Helper()
	cat := call(t, app, http.MethodPost, "/api/categories", pkgjwt.RoleAdmin, map[string]any{"code": "FRN", "name": "Frenos"})
	require.Equal(t, http.StatusCreated, cat.status, string(cat.raw))

	part := call(t, app, http.MethodPost, "/api/parts", pkgjwt.RoleAdmin, map[string]any{
		"code": "PF-001", "name": "Pastillas de freno", "category_id": cat.body["id"],
		"price": "50.00", "cost": "30.00", "initial_stock": 10, "min_quantity": 2,
	})
	require.Equal(t, http.StatusCreated, part.status, string(part.raw))
	assert.EqualValues(t, 10, part.body["stock_quantity"])

	rep := call(t, app, http.MethodPost, "/api/repairs", pkgjwt.RoleRecepcion, map[string]any{
		"vehicle_id": "veh-1", "customer_id": "cli-1", "labor_cost": "80.00",
	})
	require.Equal(t, http.StatusCreated, rep.status, string(rep.raw))
	assert.Equal(t, "pending", rep.body["status"])

	return part.body["id"].(string), rep.body["id"].(string)
}

func TestAPI_AttachDetachFlujoCompleto(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)

	attach := call(t, app, http.MethodPost, "/api/repairs/"+repairID+"/parts", pkgjwt.RoleTecnico,
		map[string]any{"part_id": partID, "quantity": 3})
	require.Equal(t, http.StatusOK, attach.status, string(attach.raw))
	assert.True(t, decField(t, attach.body, "unit_price").Equal(mustDec("50")))
	assert.True(t, decField(t, attach.body, "total_price").Equal(mustDec("150")))
	lineID := attach.body["id"].(string)

	rep := call(t, app, http.MethodGet, "/api/repairs/"+repairID, pkgjwt.RoleRecepcion, nil)
	require.Equal(t, http.StatusOK, rep.status)
	assert.True(t, decField(t, rep.body, "parts_cost").Equal(mustDec("150")))
	assert.True(t, decField(t, rep.body, "total_cost").Equal(mustDec("230")))
	assert.Len(t, rep.body["parts"], 1)

	part := call(t, app, http.MethodGet, "/api/parts/"+partID, pkgjwt.RoleTecnico, nil)
	assert.EqualValues(t, 7, part.body["stock_quantity"])

	detach := call(t, app, http.MethodDelete, "/api/repairs/"+repairID+"/parts/"+lineID, pkgjwt.RoleTecnico, nil)
	require.Equal(t, http.StatusOK, detach.status, string(detach.raw))
	assert.NotEmpty(t, detach.body["message"])

	part = call(t, app, http.MethodGet, "/api/parts/"+partID, pkgjwt.RoleTecnico, nil)
	assert.EqualValues(t, 10, part.body["stock_quantity"])

	rep = call(t, app, http.MethodGet, "/api/repairs/"+repairID, pkgjwt.RoleTecnico, nil)
	assert.True(t, decField(t, rep.body, "parts_cost").IsZero())
	assert.True(t, decField(t, rep.body, "total_cost").Equal(mustDec("80")))

	again := call(t, app, http.MethodDelete, "/api/repairs/"+repairID+"/parts/"+lineID, pkgjwt.RoleTecnico, nil)
	assert.Equal(t, http.StatusNotFound, again.status)
	assert.Equal(t, "NOT_FOUND", again.body["code"])

	movs := call(t, app, http.MethodGet, "/api/parts/"+partID+"/movements", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, movs.status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(movs.raw, &list))
	assert.Len(t, list, 3) // stock inicial + reserva + devolución
}

func TestAPI_AttachStockInsuficiente(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)

	res := call(t, app, http.MethodPost, "/api/repairs/"+repairID+"/parts", pkgjwt.RoleTecnico,
		map[string]any{"part_id": partID, "quantity": 11})
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.body["code"])
	assert.Equal(t, "Pastillas de freno", res.body["part_name"])
	assert.EqualValues(t, 10, res.body["available"])
	assert.Contains(t, res.body["message"], "Pastillas de freno")
}

func TestAPI_AttachErroresDeEntrada(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)
	path := "/api/repairs/" + repairID + "/parts"

	res := call(t, app, http.MethodPost, path, pkgjwt.RoleTecnico, map[string]any{"part_id": partID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.body["code"])

	res = call(t, app, http.MethodPost, path, pkgjwt.RoleTecnico, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body["message"], "part_id")

	res = call(t, app, http.MethodPost, "/api/repairs/no-existe/parts", pkgjwt.RoleTecnico, map[string]any{"part_id": partID, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, res.status)

	res = call(t, app, http.MethodPost, path, pkgjwt.RoleTecnico, map[string]any{"part_id": "no-existe", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.body["code"])
	assert.Contains(t, res.body["message"], "part_id debe ser un UUID")

	res = call(t, app, http.MethodPost, path, pkgjwt.RoleTecnico, map[string]any{"part_id": uuid.New().String(), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, res.status)

	res = call(t, app, http.MethodPost, path, pkgjwt.RoleRecepcion, map[string]any{"part_id": partID, "quantity": 1})
	assert.Equal(t, http.StatusForbidden, res.status, "recepción no agrega repuestos")

	res = call(t, app, http.MethodPost, path, "", map[string]any{"part_id": partID, "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestAPI_IDsMalformadosResponden404(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)
	attach := call(t, app, http.MethodPost, "/api/repairs/"+repairID+"/parts", pkgjwt.RoleTecnico, map[string]any{"part_id": partID, "quantity": 1})
	require.Equal(t, http.StatusOK, attach.status, string(attach.raw))
	lineID := attach.body["id"].(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"get repair", http.MethodGet, "/api/repairs/abc", nil},
		{"patch repair", http.MethodPatch, "/api/repairs/abc", map[string]any{"description": "x"}},
		{"list lines", http.MethodGet, "/api/repairs/abc/parts", nil},
		{"attach", http.MethodPost, "/api/repairs/abc/parts", map[string]any{"part_id": partID, "quantity": 1}},
		{"detach repair", http.MethodDelete, "/api/repairs/abc/parts/" + lineID, nil},
		{"detach line", http.MethodDelete, "/api/repairs/" + repairID + "/parts/abc", nil},
		{"get part", http.MethodGet, "/api/parts/abc", nil},
		{"update part", http.MethodPut, "/api/parts/abc", map[string]any{"name": "x"}},
		{"delete part", http.MethodDelete, "/api/parts/abc", nil},
		{"receipt", http.MethodPost, "/api/parts/abc/receipts", map[string]any{"quantity": 1}},
		{"movements", http.MethodGet, "/api/parts/abc/movements", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, app, tt.method, tt.path, pkgjwt.RoleAdmin, tt.body)
			assert.Equal(t, http.StatusNotFound, res.status, string(res.raw))
			assert.Equal(t, "NOT_FOUND", res.body["code"])
		})
	}

	// Nada cambió: la línea sigue y el stock también.
	part := call(t, app, http.MethodGet, "/api/parts/"+partID, pkgjwt.RoleAdmin, nil)
	assert.EqualValues(t, 9, part.body["stock_quantity"])
}

func TestAPI_PatchRepair(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)
	path := "/api/repairs/" + repairID

	res := call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "EMPTY_UPDATE", res.body["code"])

	res = call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{"vehicle_id": "otro", "parts_cost": "1"})
	assert.Equal(t, http.StatusBadRequest, res.status, "campos fuera de la lista permitida se ignoran")
	assert.Equal(t, "EMPTY_UPDATE", res.body["code"])

	res = call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{"status": "archivada"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.body["code"])

	res = call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, res.status, "pending -> completed no está permitido")

	attach := call(t, app, http.MethodPost, path+"/parts", pkgjwt.RoleTecnico, map[string]any{"part_id": partID, "quantity": 2})
	require.Equal(t, http.StatusOK, attach.status)

	res = call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{"labor_cost": "120.50", "status": "in_progress"})
	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	assert.Equal(t, "in_progress", res.body["status"])
	assert.NotNil(t, res.body["start_date"])
	assert.True(t, decField(t, res.body, "parts_cost").Equal(mustDec("100")))
	assert.True(t, decField(t, res.body, "total_cost").Equal(mustDec("220.50")))

	res = call(t, app, http.MethodPatch, path, pkgjwt.RoleTecnico, map[string]any{"labor_cost": "10.005"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.body["code"])
	assert.Equal(t, "los montos admiten a lo sumo dos decimales", res.body["message"])

	rep := call(t, app, http.MethodGet, path, pkgjwt.RoleTecnico, nil)
	assert.True(t, decField(t, rep.body, "labor_cost").Equal(mustDec("120.50")), "el monto rechazado no se guardó")

	res = call(t, app, http.MethodPatch, "/api/repairs/no-existe", pkgjwt.RoleTecnico, map[string]any{"description": "x"})
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestAPI_CatalogoYListados(t *testing.T) {
	app := buildAPI()
	partID, repairID := seedViaAPI(t, app)

	dup := call(t, app, http.MethodPost, "/api/parts", pkgjwt.RoleAdmin, map[string]any{"code": "PF-001", "name": "Otro", "price": "1"})
	assert.Equal(t, http.StatusConflict, dup.status)

	forbidden := call(t, app, http.MethodPost, "/api/parts", pkgjwt.RoleTecnico, map[string]any{"code": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, forbidden.status)

	upd := call(t, app, http.MethodPut, "/api/parts/"+partID, pkgjwt.RoleAdmin, map[string]any{"price": "55.00", "min_quantity": 12})
	require.Equal(t, http.StatusOK, upd.status, string(upd.raw))
	assert.True(t, decField(t, upd.body, "price").Equal(mustDec("55")))
	assert.EqualValues(t, 10, upd.body["stock_quantity"], "el PUT no toca el stock")
	assert.Equal(t, true, upd.body["low_stock"])

	low := call(t, app, http.MethodGet, "/api/parts?low_stock=true", pkgjwt.RoleTecnico, nil)
	require.Equal(t, http.StatusOK, low.status)
	assert.Len(t, low.body["items"], 1)

	receipt := call(t, app, http.MethodPost, "/api/parts/"+partID+"/receipts", pkgjwt.RoleRecepcion,
		map[string]any{"quantity": 5, "unit_cost": "36.00", "reference": "FAC-991"})
	require.Equal(t, http.StatusOK, receipt.status, string(receipt.raw))
	assert.EqualValues(t, 15, receipt.body["stock_quantity"])
	assert.True(t, decField(t, receipt.body, "cost").Equal(mustDec("32")))

	attach := call(t, app, http.MethodPost, "/api/repairs/"+repairID+"/parts", pkgjwt.RoleAdmin, map[string]any{"part_id": partID, "quantity": 1})
	require.Equal(t, http.StatusOK, attach.status)
	assert.True(t, decField(t, attach.body, "unit_price").Equal(mustDec("55")))

	del := call(t, app, http.MethodDelete, "/api/parts/"+partID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, del.status)
	assert.Equal(t, "PART_REFERENCED", del.body["code"])

	repairs := call(t, app, http.MethodGet, "/api/repairs?status=pending", pkgjwt.RoleRecepcion, nil)
	require.Equal(t, http.StatusOK, repairs.status)
	assert.Len(t, repairs.body["items"], 1)

	bad := call(t, app, http.MethodGet, "/api/repairs?status=nada", pkgjwt.RoleRecepcion, nil)
	assert.Equal(t, http.StatusBadRequest, bad.status)

	lines := call(t, app, http.MethodGet, "/api/repairs/"+repairID+"/parts", pkgjwt.RoleRecepcion, nil)
	require.Equal(t, http.StatusOK, lines.status)
	var arr []map[string]any
	require.NoError(t, json.Unmarshal(lines.raw, &arr))
	assert.Len(t, arr, 1)

	cats := call(t, app, http.MethodGet, "/api/categories", pkgjwt.RoleTecnico, nil)
	require.Equal(t, http.StatusOK, cats.status)
	var catList []map[string]any
	require.NoError(t, json.Unmarshal(cats.raw, &catList))
	assert.Len(t, catList, 1)
}
