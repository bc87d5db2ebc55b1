// Package metadata signs generated text documents with a trailing comment
// block carrying a content hash, and verifies them later.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata contains the document status information.
type Metadata struct {
	LastModify time.Time
	Version    string
	Hash       string
	Validation bool
}

// SignOptions controls the fields written by Sign. A zero Now uses the
// current time.
type SignOptions struct {
	Now       time.Time
	Version   string
	Validated bool
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)<!--\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*-->`)

// Extract splits content into its metadata block (nil when absent) and the
// remaining body. The body has trailing newlines removed; it is what gets
// hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	body := strings.TrimRight(metadataRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, body
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "VALIDATION":
			meta.Validation = strings.EqualFold(val, "TRUE")
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		case "VERSION":
			meta.Version = val
		}
	}

	return meta, body
}

// CalculateHash computes the SHA-256 hash of the content without its
// metadata block.
func CalculateHash(content string) string {
	_, body := Extract(content)
	sum := sha256.Sum256([]byte(body))

	return hex.EncodeToString(sum[:])
}

// Sign replaces any metadata block in content with a fresh one. The result
// ends with a newline.
func Sign(content string, opts SignOptions) string {
	_, body := Extract(content)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	valStr := "FALSE"
	if opts.Validated {
		valStr = "TRUE"
	}

	var sb strings.Builder

	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(TagStart + "\n")
	fmt.Fprintf(&sb, "VALIDATION: %s\n", valStr)

	if opts.Version != "" {
		fmt.Fprintf(&sb, "VERSION: %s\n", opts.Version)
	}

	fmt.Fprintf(&sb, "LAST_MODIFY: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "HASH: %s\n", CalculateHash(body))
	sb.WriteString(TagEnd + "\n")

	return sb.String()
}

// Verify checks that content matches the hash in its metadata and returns
// the parsed block.
func Verify(content string) (*Metadata, error) {
	meta, body := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	if calculated := CalculateHash(body); calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}
