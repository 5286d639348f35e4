package detail

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/catalog-enricher/internal/listing"
	"github.com/shelfline/catalog-enricher/internal/webclient"
)

const productPage = `<html><body>
<span id="productTitle">
   NIVEA Body Lotion   400ml
</span>
<div id="imgTagWrapperId"><img id="landingImage" src="https://m.media-amazon.com/images/I/main._AC_SX425_.jpg"></div>
<div id="altImages"><ul>
  <li><img src="https://m.media-amazon.com/images/I/main._AC_US40_.jpg"></li>
  <li><img data-old-src="https://m.media-amazon.com/images/I/side._AC_US40_.jpg" src="data:image/gif;base64,xx"></li>
  <li><img src="https://m.media-amazon.com/images/G/transparent-pixel.gif"></li>
  <li><img src="/relative/path.jpg"></li>
  <li><img src="https://m.media-amazon.com/images/I/back._AC_US40_.jpg"></li>
  <li><img src="https://m.media-amazon.com/images/I/top._AC_US40_.jpg"></li>
</ul></div>
<div id="feature-bullets"><ul>
  <li><span class="a-list-item"> Deep moisture for 48h </span></li>
  <li><span class="a-list-item">   </span></li>
  <li><span class="a-list-item">For dry skin</span></li>
</ul></div>
<div id="productDescription"><p>Rich <b>lotion</b> with almond oil.</p></div>
</body></html>`

func newMockedFetcher(t *testing.T, maxImages int) *Fetcher {
	t.Helper()
	c := webclient.New(5*time.Second, nil, nil)
	httpmock.ActivateNonDefault(c.HTTPClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewFetcher(c, maxImages)
}

func TestProductURL(t *testing.T) {
	expected := "https://www.amazon.sa/-/ar/dp/B07XYZ1234"
	if got := ProductURL("B07XYZ1234", "amazon.sa", "ar"); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestFetchDetails(t *testing.T) {
	f := newMockedFetcher(t, 3)
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.sa/-/en/dp/B07XYZ1234",
		httpmock.NewStringResponder(http.StatusOK, productPage))

	d, err := f.FetchDetails(context.Background(), "B07XYZ1234", "amazon.sa", "en")
	require.NoError(t, err)

	assert.Equal(t, "NIVEA Body Lotion 400ml", d.Title)
	assert.Equal(t, "en", d.Language)
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/main._AC_SX425_.jpg",
		"https://m.media-amazon.com/images/I/side._AC_US40_.jpg",
		"https://m.media-amazon.com/images/I/back._AC_US40_.jpg",
	}, d.Images, "hero first, duplicate and placeholder thumbnails skipped, capped at max images")
	assert.Equal(t, []string{"Deep moisture for 48h", "For dry skin"}, d.Bullets)
	assert.Contains(t, d.LongText, "almond oil")
	assert.NotContains(t, d.LongText, "<b>")
}

func TestFetchDetails_Challenge(t *testing.T) {
	f := newMockedFetcher(t, 5)
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.sa/-/en/dp/B07XYZ1234",
		httpmock.NewStringResponder(http.StatusOK, `<html><h4>Enter the characters you see below</h4></html>`))

	d, err := f.FetchDetails(context.Background(), "B07XYZ1234", "amazon.sa", "en")
	assert.True(t, errors.Is(err, listing.ErrBlocked))
	assert.Empty(t, d.Images)
}

func TestFetchDetails_NotFound(t *testing.T) {
	f := newMockedFetcher(t, 5)
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.sa/-/ar/dp/B07XYZ1234",
		httpmock.NewStringResponder(http.StatusNotFound, ""))

	_, err := f.FetchDetails(context.Background(), "B07XYZ1234", "amazon.sa", "ar")
	assert.Equal(t, listing.KindNotFound, listing.Classify(err))
}

func TestFetchDetails_TitleOnlyPage(t *testing.T) {
	f := newMockedFetcher(t, 5)
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.sa/-/ar/dp/B07XYZ1234",
		httpmock.NewStringResponder(http.StatusOK, `<html><span id="productTitle">لوشن نيفيا</span></html>`))

	d, err := f.FetchDetails(context.Background(), "B07XYZ1234", "amazon.sa", "ar")
	require.NoError(t, err)
	assert.Equal(t, "لوشن نيفيا", d.Title)
	assert.Empty(t, d.Images)
	assert.Empty(t, d.LongText)
}
