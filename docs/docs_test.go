package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocMatchesAnnotations(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Schemes     []string                   `json:"schemes"`
		BasePath    string                     `json:"basePath"`
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, []string{"http"}, doc.Schemes)
	assert.Equal(t, "/api", doc.BasePath)
	for _, p := range []string{"/users/register", "/users/login", "/users/admin/login", "/documents/upload", "/documents/download/{id}"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.Contains(t, doc.Definitions["model.User"].Properties, "fullName")
	assert.Contains(t, doc.Definitions["handler.RegisterRequest"].Properties, "isAdmin")
}
