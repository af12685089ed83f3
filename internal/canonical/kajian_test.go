package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
)

func captionPost(code, caption string, widths ...int) instagram.Post {
	post := instagram.Post{Code: code}
	if caption != "" {
		post.Caption = &instagram.Caption{Text: caption}
	}
	if len(widths) > 0 {
		versions := &instagram.ImageVersions{}
		for _, w := range widths {
			versions.Candidates = append(versions.Candidates, instagram.ImageCandidate{
				URL:   imageURL(w),
				Width: w,
			})
		}
		post.ImageVersions = versions
	}
	return post
}

func imageURL(width int) string {
	return "https://cdn/img-" + string(rune('a'+width%26)) + ".jpg"
}

func TestMapURL(t *testing.T) {
	t.Parallel()

	post := captionPost("CxYz12", "Kajian besok di https://maps.app.goo.gl/abc123 insya Allah", 320)
	assert.Equal(t, "https://maps.app.goo.gl/abc123", MapURL(post))

	assert.Empty(t, MapURL(captionPost("CxYz12", "tanpa tautan", 320)))
	assert.Empty(t, MapURL(instagram.Post{Code: "CxYz12"}))
}

func TestMapID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc123", MapID("https://maps.app.goo.gl/abc123"))
	assert.Equal(t, "abc123", MapID("https://maps.app.goo.gl/abc123/"))
	assert.Empty(t, MapID(""))
}

func TestKajianSingleImagePicksWidest(t *testing.T) {
	t.Parallel()

	post := instagram.Post{
		Code: "CxYz12",
		ImageVersions: &instagram.ImageVersions{
			Candidates: []instagram.ImageCandidate{
				{URL: "https://cdn/small.jpg", Width: 320},
				{URL: "https://cdn/big.jpg", Width: 1080},
				{URL: "https://cdn/mid.jpg", Width: 720},
			},
		},
	}

	infos := Kajian(post, "acc-1", "city-1", nil)
	require.Len(t, infos, 1)
	assert.Equal(t, "CxYz12", infos[0].ID)
	assert.Equal(t, "https://cdn/big.jpg", infos[0].Image)
	assert.Equal(t, "city-1", infos[0].CityID)
	assert.Nil(t, infos[0].KajianLocationID)
	assert.Nil(t, infos[0].Lat)
}

func TestKajianWidthTieKeepsInputOrder(t *testing.T) {
	t.Parallel()

	post := instagram.Post{
		Code: "CxYz12",
		ImageVersions: &instagram.ImageVersions{
			Candidates: []instagram.ImageCandidate{
				{URL: "https://cdn/first.jpg", Width: 1080},
				{URL: "https://cdn/second.jpg", Width: 1080},
			},
		},
	}

	infos := Kajian(post, "acc-1", "city-1", nil)
	require.Len(t, infos, 1)
	assert.Equal(t, "https://cdn/first.jpg", infos[0].Image)
}

func TestKajianCarouselSuffixesIDs(t *testing.T) {
	t.Parallel()

	post := instagram.Post{Code: "CxYz12"}
	post.CarouselMedia = []instagram.CarouselItem{
		{ImageVersions: instagram.ImageVersions{Candidates: []instagram.ImageCandidate{{URL: "https://cdn/1.jpg", Width: 1080}}}},
		{ImageVersions: instagram.ImageVersions{Candidates: []instagram.ImageCandidate{{URL: "https://cdn/2.jpg", Width: 1080}}}},
	}

	infos := Kajian(post, "acc-1", "city-1", nil)
	require.Len(t, infos, 2)
	assert.Equal(t, "CxYz12-1", infos[0].ID)
	assert.Equal(t, "CxYz12-2", infos[1].ID)
}

func TestKajianResolvedLocationWins(t *testing.T) {
	t.Parallel()

	post := captionPost("CxYz12", "https://maps.app.goo.gl/abc123", 1080)
	location := &domain.KajianLocation{ID: "loc-1", CityID: "city-2", Lat: -6.2, Lng: 106.8}

	infos := Kajian(post, "acc-1", "city-1", location)
	require.Len(t, infos, 1)
	require.NotNil(t, infos[0].KajianLocationID)
	assert.Equal(t, "loc-1", *infos[0].KajianLocationID)
	assert.Equal(t, "city-2", infos[0].CityID)
	require.NotNil(t, infos[0].Lat)
	assert.InDelta(t, -6.2, *infos[0].Lat, 0.0001)
	require.NotNil(t, infos[0].Lng)
	assert.InDelta(t, 106.8, *infos[0].Lng, 0.0001)
}

func TestKajianWithoutImages(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Kajian(instagram.Post{Code: "CxYz12"}, "acc-1", "city-1", nil))
}
