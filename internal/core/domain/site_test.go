package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_DomainProperty(t *testing.T) {
	domain, ptype, err := Canonicalize("sc-domain:example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
	assert.Equal(t, PropertyDomain, ptype)
}

func TestCanonicalize_URLPrefixProperty(t *testing.T) {
	domain, ptype, err := Canonicalize("https://www.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
	assert.Equal(t, PropertyURLPrefix, ptype)
}

func TestCanonicalize_UppercaseHost(t *testing.T) {
	domain, _, err := Canonicalize("https://Example.COM/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
}

func TestCanonicalize_WwwInDomainProperty(t *testing.T) {
	domain, _, err := Canonicalize("sc-domain:www.example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
}

func TestCanonicalize_Unparseable(t *testing.T) {
	cases := []string{"", "sc-domain:", "not a url", "http://"}
	for _, raw := range cases {
		_, _, err := Canonicalize(raw)
		assert.True(t, errors.Is(err, ErrUnparseableSite), "expected unparseable for %q", raw)
	}
}

func TestNormalizeForMatch_StripsSingleWwwOnly(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeForMatch("www.example.com"))
	// Only one leading www. is stripped, never recursively.
	assert.Equal(t, "www.example.com", NormalizeForMatch("www.www.example.com"))
	assert.Equal(t, "example.com", NormalizeForMatch("  EXAMPLE.com "))
}

func TestDomainFilter_Matches_EqualityOnly(t *testing.T) {
	f := NewDomainFilter("example.com")

	match := Site{Domain: "example.com"}
	assert.True(t, f.Matches(match))

	// Substrings and suffixes must not match.
	assert.False(t, f.Matches(Site{Domain: "notexample.com"}))
	assert.False(t, f.Matches(Site{Domain: "example.com.evil.org"}))
	assert.False(t, f.Matches(Site{Domain: "sub.example.com"}))
}

func TestDomainFilter_Matches_NormalizesBothSides(t *testing.T) {
	f := NewDomainFilter("www.Example.com")
	assert.Equal(t, "example.com", f.Domain())
	assert.True(t, f.Matches(Site{Domain: "example.com"}))
	assert.True(t, f.Matches(Site{Domain: "www.example.com"}))
}

func TestDomainFilter_ZeroMatchesAll(t *testing.T) {
	var f DomainFilter
	assert.True(t, f.IsZero())
	assert.True(t, f.Matches(Site{Domain: "anything.org"}))

	empty := NewDomainFilter("")
	assert.True(t, empty.IsZero())
}
