package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("notes-app_2", "app_id", true))
	assert.NoError(t, ValidateID("", "app_id", false))
	assert.Error(t, ValidateID("", "app_id", true))
	assert.Error(t, ValidateID("../etc", "app_id", true))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "app_id", true))
}

func TestValidateURL(t *testing.T) {
	t.Run("accepts http and file", func(t *testing.T) {
		assert.NoError(t, ValidateURL("http://localhost:5173", "url", true))
		assert.NoError(t, ValidateURL("https://example.com/app", "url", true))
		assert.NoError(t, ValidateURL("file:///srv/app/index.html", "url", true))
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		assert.Error(t, ValidateURL("ftp://example.com", "url", true))
		assert.Error(t, ValidateURL("http://", "url", true))
		assert.Error(t, ValidateURL("localhost:5173", "url", true))
	})

	t.Run("optional empty", func(t *testing.T) {
		assert.NoError(t, ValidateURL("", "url", false))
		assert.Error(t, ValidateURL("", "url", true))
	})
}

func TestValidateHeaders(t *testing.T) {
	assert.NoError(t, ValidateHeaders(map[string]string{"Authorization": "Bearer x"}))
	assert.Error(t, ValidateHeaders(map[string]string{"Bad Header": "x"}))
	assert.Error(t, ValidateHeaders(map[string]string{"X-Inject": "a\r\nb"}))
}

func TestValidateWindowGeometry(t *testing.T) {
	assert.NoError(t, ValidateWindowGeometry(10, 20, 800, 600))
	assert.NoError(t, ValidateWindowGeometry(-1920, 0, 800, 600))
	assert.Error(t, ValidateWindowGeometry(0, 0, 0, 600))
	assert.Error(t, ValidateWindowGeometry(0, 0, 800, -1))
	assert.Error(t, ValidateWindowGeometry(0, 0, MaxWindowDimension+1, 600))
}

func TestJSONSizeValidator(t *testing.T) {
	v := NewJSONSizeValidator(16)

	assert.NoError(t, v.ValidateJSON([]byte(`{"a":1}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"a":`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"aaaaaaaaaaaaaaaa":1}`)))
}
