package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

func TestDocument_PreservesOrder(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.WriteStr("zeta", "z", true))
	require.NoError(t, d.WriteStr("alpha", "a", true))
	require.NoError(t, d.WriteNull("mid"))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"z","alpha":"a","mid":null}`, string(b))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Names())
	assert.Equal(t, 3, d.Len())
}

func TestDocument_ExactStrings(t *testing.T) {
	d := NewDocument()
	values := []string{` "quoted" `, "<b>&amp;</b>", "tab\there", "é\U0001F600", ""}
	for i, v := range values {
		require.NoError(t, d.WriteStr(string(rune('a'+i)), v, true))
	}

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"<b>&amp;</b>"`, "no HTML escaping")

	var back map[string]string
	require.NoError(t, json.Unmarshal(b, &back))
	for i, v := range values {
		assert.Equal(t, v, back[string(rune('a'+i))])
	}
}

func TestDocument_MultiValued(t *testing.T) {
	d := NewDocument("tags")
	require.NoError(t, d.WriteStr("tags", "only", true))
	require.NoError(t, d.WriteStr("name", "x", true))
	require.NoError(t, d.WriteStr("name", "y", true))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"tags":["only"],"name":["x","y"]}`, string(b))
}

func TestDocument_AbsentMultiValuedIsNull(t *testing.T) {
	d := NewDocument("tags")
	require.NoError(t, d.WriteStr("name", "a", true))
	require.NoError(t, d.WriteNull("tags"))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a","tags":null}`, string(b))
}

func TestDocument_Empty(t *testing.T) {
	b, err := json.Marshal(NewDocument())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestDocument_ThroughFieldType(t *testing.T) {
	d := NewDocument()
	str := fieldtype.Str{}
	require.NoError(t, str.Write(d, "title", fieldtype.StoredString("Hello, World")))
	require.NoError(t, str.Write(d, "subtitle", fieldtype.AbsentStored()))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Hello, World","subtitle":null}`, string(b))
}

func TestDocument_Values(t *testing.T) {
	d := NewDocument("tags")
	require.NoError(t, d.WriteStr("tags", "b", true))
	require.NoError(t, d.WriteNull("tags"))
	require.NoError(t, d.WriteStr("tags", "a", true))

	assert.Equal(t, []string{"b", "a"}, d.Values("tags"))
	assert.Nil(t, d.Values("missing"))
}
