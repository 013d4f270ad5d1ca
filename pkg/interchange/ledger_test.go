package interchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger(t *testing.T) {
	l := NewLedger(nil)
	assert.Equal(t, 0, l.Len())
	assert.NotNil(t, l.Warnings())

	name := ""
	l.Fill("api", "name", &name, "Untitled")
	assert.Equal(t, "Untitled", name)

	l.Fill("api", "name", &name, "Other")
	assert.Equal(t, "Untitled", name, "Fill must not overwrite a value")

	assert.Equal(t, 100.0, l.Clamp("api", "popularity", 140, 0, 100))
	assert.Equal(t, 0.0, l.Clamp("api", "popularity", -3, 0, 100))
	assert.Equal(t, 42.0, l.Clamp("api", "popularity", 42, 0, 100))

	ws := l.Warnings()
	assert.Equal(t, []WarningCode{WarnDefaulted, WarnValueClamped, WarnValueClamped}, warningCodes(ws))
	assert.Equal(t, `defaulted [api]: name missing, defaulted to "Untitled"`, ws[0].String())

	ws[0].Message = "changed"
	assert.NotEqual(t, "changed", l.Warnings()[0].Message, "Warnings must return a copy")
}

func TestWarning_StringWithoutEntity(t *testing.T) {
	w := Warning{Code: WarnUnknownField, Message: `unknown field "x" ignored`}
	assert.Equal(t, `unknown_field: unknown field "x" ignored`, w.String())
}
