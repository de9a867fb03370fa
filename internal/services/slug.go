package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// FallbackSlug is used when a title has no slug-safe characters.
const FallbackSlug = "event"

// MaxSlugProbes bounds the uniqueness probe. After that many collisions a
// random suffix is appended instead of probing further.
const MaxSlugProbes = 100

var (
	// Whitespace includes \v and the Unicode space separators (NBSP, ideographic
	// space, BOM and friends), not only the ASCII set matched by \s.
	nonSlugChars = regexp.MustCompile(`[^\w\s\v\p{Zs}\p{Zl}\p{Zp}\x{FEFF}-]`)
	whitespace   = regexp.MustCompile(`[\s\v\p{Zs}\p{Zl}\p{Zp}\x{FEFF}]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// SlugChecker reports whether a slug is already taken by an event other
// than excludeID.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// BaseSlug derives the slug candidate for title: lowercase, trimmed, only
// word characters, whitespace and hyphens kept, whitespace runs and repeated
// hyphens collapsed to one hyphen, no leading or trailing hyphens.
func BaseSlug(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return FallbackSlug
	}
	return s
}

// UniqueSlug returns base, or base-N for the smallest N >= 1 not taken.
// The probe is an optimization: storage still enforces uniqueness.
func UniqueSlug(ctx context.Context, checker SlugChecker, base, excludeID string) (string, error) {
	candidate := base
	for n := 1; n <= MaxSlugProbes; n++ {
		taken, err := checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}
	return base + "-" + suffix, nil
}

const slugSuffixLength = 6

var slugSuffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

func randomSuffix() (string, error) {
	b := make([]rune, slugSuffixLength)
	max := big.NewInt(int64(len(slugSuffixAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = slugSuffixAlphabet[n.Int64()]
	}
	return string(b), nil
}
