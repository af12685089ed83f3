package canonical

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
)

var captionURLExpr = regexp.MustCompile(`(?i)(https?://[^\s]+)`)

// MapURL extracts the first embedded URL from a post caption, or ""
// when the caption carries none.
func MapURL(post instagram.Post) string {
	if post.Caption == nil {
		return ""
	}
	return captionURLExpr.FindString(post.Caption.Text)
}

// MapID is the shared map link's last path segment, the natural key of
// a geocoded location.
func MapID(mapURL string) string {
	if mapURL == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(mapURL, "/")
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

// Kajian maps one feed post into records, one per image. Carousel
// posts yield several records suffixed -1, -2, ... after the post code.
// A resolved location contributes coordinates and overrides the
// account's fallback city; otherwise the location fields stay null.
func Kajian(post instagram.Post, accountID, fallbackCityID string, location *domain.KajianLocation) []domain.KajianInfo {
	images := postImages(post)
	if len(images) == 0 {
		return nil
	}

	infos := make([]domain.KajianInfo, 0, len(images))
	for i, image := range images {
		id := post.Code
		if len(images) > 1 {
			id = fmt.Sprintf("%s-%d", post.Code, i+1)
		}

		info := domain.KajianInfo{
			ID:                 id,
			Image:              image,
			InstagramAccountID: accountID,
			CityID:             fallbackCityID,
		}
		if location != nil {
			locationID := location.ID
			lat, lng := location.Lat, location.Lng
			info.KajianLocationID = &locationID
			info.CityID = location.CityID
			info.Lat = &lat
			info.Lng = &lng
		}

		infos = append(infos, info)
	}

	return infos
}

func postImages(post instagram.Post) []string {
	if post.ImageVersions != nil {
		if url := bestCandidate(post.ImageVersions.Candidates); url != "" {
			return []string{url}
		}
		return nil
	}

	var images []string
	for _, media := range post.CarouselMedia {
		if url := bestCandidate(media.ImageVersions.Candidates); url != "" {
			images = append(images, url)
		}
	}
	return images
}

// bestCandidate picks the widest variant; equal widths keep input order.
func bestCandidate(candidates []instagram.ImageCandidate) string {
	if len(candidates) == 0 {
		return ""
	}

	sorted := make([]instagram.ImageCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Width > sorted[j].Width
	})

	return sorted[0].URL
}
