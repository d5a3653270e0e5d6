package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://startups.gallery"

func TestExtractCompanyLinks(t *testing.T) {
	html := `
	<html><body>
		<a href="./companies/acme">Acme</a>
		<a href="./companies/globex">Globex</a>
		<a href="./companies/acme">Acme again</a>
		<a href="./categories/ai">AI</a>
		<a href="https://twitter.com/acme">Twitter</a>
		<a href="/companies/relative-root">Not matched</a>
		<a href="./companies/">Empty slug</a>
		<a>No href</a>
	</body></html>`

	links, err := ExtractCompanyLinks(html, testOrigin, "./companies/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://startups.gallery/companies/acme",
		"https://startups.gallery/companies/globex",
	}, links)
}

func TestExtractCompanyLinks_TrailingSlashOrigin(t *testing.T) {
	links, err := ExtractCompanyLinks(`<a href="./companies/acme">A</a>`, testOrigin+"/", "./companies/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://startups.gallery/companies/acme"}, links)
}

func TestExtractCompanyLinks_NoMatches(t *testing.T) {
	links, err := ExtractCompanyLinks(`<html><body><p>nothing</p></body></html>`, testOrigin, "./companies/")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestExtractCompanyLinks_EmptyPrefix(t *testing.T) {
	_, err := ExtractCompanyLinks(`<a href="./x">x</a>`, testOrigin, "")
	require.Error(t, err)
	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestExtractCategoryLinks(t *testing.T) {
	html := `<ul>
		<li><a href="./categories/ai">AI</a></li>
		<li><a href="./categories/fintech">Fintech</a></li>
		<li><a href="./companies/acme">Acme</a></li>
	</ul>`
	links, err := ExtractCategoryLinks(html, testOrigin, "./categories/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://startups.gallery/categories/ai",
		"https://startups.gallery/categories/fintech",
	}, links)
}
