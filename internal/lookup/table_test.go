package lookup

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

func TestLookupIsCaseAndSpaceInsensitive(t *testing.T) {
	table := New([]domain.LookupEntry{
		{Brand: "Crocin Advance", Category: "Painkiller", Manufacturer: "GSK"},
	})

	for _, name := range []string{"crocin advance", "  CROCIN ADVANCE ", "Crocin Advance"} {
		e, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "Painkiller", e.Category)
		assert.Equal(t, "GSK", e.Manufacturer)
	}

	_, ok := table.Lookup("crocin")
	assert.False(t, ok)
	_, ok = table.Lookup("   ")
	assert.False(t, ok)
}

func TestNewSkipsBlankBrandsAndKeepsLastDuplicate(t *testing.T) {
	table := New([]domain.LookupEntry{
		{Brand: "", Category: "Ignored"},
		{Brand: "Benadryl", Category: "Cough Syrup", Manufacturer: "J&J"},
		{Brand: "benadryl", Category: "Antihistamine", Manufacturer: "Kenvue"},
	})

	assert.Equal(t, 1, table.Len())
	e, ok := table.Lookup("BENADRYL")
	require.True(t, ok)
	assert.Equal(t, "Antihistamine", e.Category)
}

func TestNilTable(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("anything")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "lookup.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"brand":"Dolo 650","category":"Painkiller","manufacturer":"Micro Labs"}]`), 0644))
	table, err := LoadFile(jsonPath)
	require.NoError(t, err)
	e, ok := table.Lookup("dolo 650")
	require.True(t, ok)
	assert.Equal(t, "Micro Labs", e.Manufacturer)

	yamlPath := filepath.Join(dir, "lookup.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- brand: Augmentin\n  category: Antibiotic\n  manufacturer: GSK\n"), 0644))
	table, err = LoadFile(yamlPath)
	require.NoError(t, err)
	e, ok = table.Lookup("augmentin")
	require.True(t, ok)
	assert.Equal(t, "Antibiotic", e.Category)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile("/nonexistent/lookup.json")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

type fakeS3 struct {
	body string
	err  error
	key  string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = *params.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestLoadS3(t *testing.T) {
	client := &fakeS3{body: `[{"brand":"Cetzine","category":"Antihistamine","manufacturer":"GSK"}]`}

	table, err := LoadS3(context.Background(), client, "bucket", "static/lookup.json")
	require.NoError(t, err)
	assert.Equal(t, "static/lookup.json", client.key)
	assert.Equal(t, 1, table.Len())

	_, err = LoadS3(context.Background(), &fakeS3{err: errors.New("access denied")}, "bucket", "k.json")
	assert.Error(t, err)
}
