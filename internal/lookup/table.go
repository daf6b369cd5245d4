// Package lookup holds the static medicine metadata table used to enrich
// disposal items with a category and manufacturer.
//
// A Table is built once at startup and never modified afterwards, so it is
// safe to share across concurrent requests without locking.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

// Table maps canonical brand names to their metadata.
type Table struct {
	entries map[string]domain.LookupEntry
}

// Canonical lower-cases and trims a name into a lookup key.
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New indexes entries by canonical brand. Later duplicates replace earlier
// ones; entries with a blank brand are skipped.
func New(entries []domain.LookupEntry) *Table {
	t := &Table{entries: make(map[string]domain.LookupEntry, len(entries))}
	for _, e := range entries {
		key := Canonical(e.Brand)
		if key == "" {
			continue
		}
		t.entries[key] = e
	}
	return t
}

// Lookup returns the entry for name, if any. Blank names never match.
func (t *Table) Lookup(name string) (domain.LookupEntry, bool) {
	if t == nil {
		return domain.LookupEntry{}, false
	}
	key := Canonical(name)
	if key == "" {
		return domain.LookupEntry{}, false
	}
	e, ok := t.entries[key]
	return e, ok
}

// Len returns the number of indexed brands.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Parse decodes a lookup table. format is "json" or "yaml".
func Parse(data []byte, format string) (*Table, error) {
	var entries []domain.LookupEntry
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing lookup yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing lookup json: %w", err)
		}
	}
	return New(entries), nil
}

// LoadFile reads a lookup table from local disk, picking the format from
// the file extension.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lookup table %s: %w", path, err)
	}
	return Parse(data, formatOf(path))
}

// ObjectGetter is the subset of the S3 client used to fetch the table.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3 fetches a lookup table object from S3.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (*Table, error) {
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object from S3 bucket %s: %w", bucket, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading S3 object body: %w", err)
	}
	return Parse(data, formatOf(key))
}

func formatOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
