package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("## Visi\n\n**Mewujudkan** organisasi\nyang aktif")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Visi</h2>")
	assert.Contains(t, out, "<strong>Mewujudkan</strong>")
	assert.Contains(t, out, "<br")
}

func TestToHTMLOmitsRawHTML(t *testing.T) {
	out, err := ToHTML("<script>alert(1)</script>\n\nteks")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>teks</p>")
}
