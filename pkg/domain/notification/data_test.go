package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	assert.Equal(t, "Ana", String("Ana").String())
	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "", Value{}.String())
	assert.True(t, Value{}.IsNull())
}

func TestData_UnmarshalScalars(t *testing.T) {
	var d Data
	err := json.Unmarshal([]byte(`{"name":"Ana","total":12.5,"count":2,"vip":false,"note":null}`), &d)
	require.NoError(t, err)

	assert.Equal(t, "Ana", d.Lookup("name"))
	assert.Equal(t, "12.5", d.Lookup("total"))
	assert.Equal(t, "2", d.Lookup("count"))
	assert.Equal(t, "false", d.Lookup("vip"))
	assert.Equal(t, "", d.Lookup("note"))
	assert.Equal(t, "", d.Lookup("missing"))
}

func TestData_RejectsNestedValues(t *testing.T) {
	var d Data
	assert.Error(t, json.Unmarshal([]byte(`{"items":[1,2]}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"user":{"name":"Ana"}}`), &d))
}

func TestData_ScanValue(t *testing.T) {
	in := Data{"name": String("Ana"), "n": Int(4)}
	raw, err := in.Value()
	require.NoError(t, err)

	var out Data
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, "Ana", out.Lookup("name"))
	assert.Equal(t, "4", out.Lookup("n"))

	var empty Data
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Error(t, empty.Scan(42))
}
