package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listingPage = `
<html><body>
  <div class="card">
    <h2 class="title">  Joe's   Pizza </h2>
    <span class="alt-title">Backup Name</span>
    <a class="profile" href="/biz/joes-pizza">profile</a>
    <a class="site" href="https://joes.example">website</a>
  </div>
  <ul class="links">
    <li><a href="/a">First  Link</a></li>
    <li><a href="/b">Second Link</a></li>
  </ul>
</body></html>`

func mustDoc(t *testing.T, raw string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestSelectFirstText(t *testing.T) {
	doc := mustDoc(t, listingPage)

	testCases := []struct {
		candidates []string
		expected   string
	}{
		{[]string{"h2.title", "span.alt-title"}, "Joe's Pizza"},
		{[]string{".missing", "span.alt-title"}, "Backup Name"},
		{[]string{".missing", ".also-missing"}, ""},
		{nil, ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, SelectFirstText(doc.Selection, test.candidates))
	}
}

func TestSelectFirstAttr(t *testing.T) {
	doc := mustDoc(t, listingPage)

	require.Equal(t, "/biz/joes-pizza", SelectFirstAttr(doc.Selection, []string{"a.profile"}, "href"))
	require.Equal(t, "https://joes.example", SelectFirstAttr(doc.Selection, []string{"a.nope", "a.site"}, "href"))
	require.Equal(t, "", SelectFirstAttr(doc.Selection, []string{"a.nope"}, "href"))
}

func TestAbsolutize(t *testing.T) {
	base, err := url.Parse("https://directory.example/results?page=2")
	require.NoError(t, err)

	testCases := []struct {
		href     string
		expected string
	}{
		{"/doctor/jane-doe", "https://directory.example/doctor/jane-doe"},
		{"https://other.example/x", "https://other.example/x"},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Absolutize(base, test.href))
	}
}

func TestGetAnchors(t *testing.T) {
	doc := mustDoc(t, listingPage)

	anchors := GetAnchors(context.Background(), doc.Find("ul.links a"))
	require.Len(t, anchors, 2)
	require.Equal(t, Anchor{Name: "First Link", Href: "/a"}, anchors[0])
	require.Equal(t, Anchor{Name: "Second Link", Href: "/b"}, anchors[1])
}
