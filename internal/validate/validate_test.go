package validate

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeBody mirrors the middleware: JSON decoded with UseNumber so numeric
// fields keep their textual form.
func decodeBody(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func fieldErrors(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Path] = e.Message
	}
	return out
}

func TestApply_MissingRequiredFieldsNamed(t *testing.T) {
	body := decodeBody(t, `{"name":"Ana"}`)
	_, errs := Register.Apply(body, nil, nil)
	require.Len(t, errs, 2)

	m := fieldErrors(errs)
	assert.Contains(t, m, "email")
	assert.Contains(t, m, "password")
	assert.Equal(t, "password is required", m["password"])
}

func TestApply_CollectsAllViolations(t *testing.T) {
	body := decodeBody(t, `{"type":"transfer","amount":-5,"category":"nope"}`)
	_, errs := TransactionCreate.Apply(body, nil, nil)

	m := fieldErrors(errs)
	assert.Contains(t, m, "type")
	assert.Contains(t, m, "amount")
	assert.Contains(t, m, "category")
	assert.Contains(t, m, "date")
	assert.Len(t, errs, 4)
}

func TestApply_AmountDecimalPlaces(t *testing.T) {
	for raw, wantOK := range map[string]bool{
		`{"type":"expense","amount":10,"date":"2024-05-01"}`:      true,
		`{"type":"expense","amount":10.5,"date":"2024-05-01"}`:    true,
		`{"type":"expense","amount":10.55,"date":"2024-05-01"}`:   true,
		`{"type":"expense","amount":10.555,"date":"2024-05-01"}`:  false,
		`{"type":"expense","amount":0.001,"date":"2024-05-01"}`:   false,
		`{"type":"expense","amount":"10.00","date":"2024-05-01"}`: true,
	} {
		req, errs := TransactionCreate.Apply(decodeBody(t, raw), nil, nil)
		if wantOK {
			require.Empty(t, errs, "body %s", raw)
			assert.Greater(t, req.Num("amount"), 0.0)
		} else {
			require.NotEmpty(t, errs, "body %s", raw)
			assert.Equal(t, "amount", errs[0].Path)
		}
	}
}

func TestApply_ObjectIDParam(t *testing.T) {
	req, errs := IDParam.Apply(nil, nil, map[string]string{"id": "64a1f0c2e4b0a1b2c3d4e5f6"})
	require.Empty(t, errs)
	assert.Equal(t, "64a1f0c2e4b0a1b2c3d4e5f6", req.Param("id"))

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "64a1f0c2e4b0a1b2c3d4e5f60"} {
		_, errs := IDParam.Apply(nil, nil, map[string]string{"id": bad})
		require.Len(t, errs, 1, "id %q", bad)
		assert.Equal(t, "id", errs[0].Path)
	}
}

func TestApply_EmailNormalized(t *testing.T) {
	body := decodeBody(t, `{"email":"  Ana@Example.COM ","password":"secret1","name":"Ana"}`)
	req, errs := Register.Apply(body, nil, nil)
	require.Empty(t, errs)
	assert.Equal(t, "ana@example.com", req.Str("email"))
}

func TestApply_QueryDefaultsAndCoercion(t *testing.T) {
	req, errs := TransactionList.Apply(nil, url.Values{}, nil)
	require.Empty(t, errs)
	assert.Equal(t, 1, req.QInt("page"))
	assert.Equal(t, 20, req.QInt("limit"))

	req, errs = TransactionList.Apply(nil, url.Values{
		"page":  {"3"},
		"limit": {"50"},
		"type":  {"income"},
		"from":  {"2024-01-01"},
	}, nil)
	require.Empty(t, errs)
	assert.Equal(t, 3, req.QInt("page"))
	assert.Equal(t, 50, req.QInt("limit"))
	assert.Equal(t, "income", req.QStr("type"))
	from, ok := req.QTime("from")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)

	_, errs = TransactionList.Apply(nil, url.Values{"limit": {"101"}}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "limit", errs[0].Path)
}

func TestApply_UnknownBodyFieldsDropped(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.co","password":"secret1","name":"A","role":"admin"}`)
	req, errs := Register.Apply(body, nil, nil)
	require.Empty(t, errs)
	assert.False(t, req.Has("role"))
}

func TestApply_DateFormats(t *testing.T) {
	body := decodeBody(t, `{"type":"income","amount":1,"date":"2024-05-01T13:45:00Z"}`)
	req, errs := TransactionCreate.Apply(body, nil, nil)
	require.Empty(t, errs)
	d, ok := req.Time("date")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 45, 0, 0, time.UTC), d)

	body = decodeBody(t, `{"type":"income","amount":1,"date":"01/05/2024"}`)
	_, errs = TransactionCreate.Apply(body, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "date", errs[0].Path)
}

func TestApply_StringBounds(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.co","password":"12345","name":"A"}`)
	_, errs := Register.Apply(body, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Path)
	assert.Equal(t, "password must be at least 6 characters", errs[0].Message)
}
