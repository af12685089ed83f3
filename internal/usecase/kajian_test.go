package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/infrastructure/instagram"
)

func TestKajianResolvedLocation(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		accounts: []domain.InstagramAccount{{ID: "acc-1", Username: "kajianjakarta", CityID: "city-1"}},
		locations: map[string]*domain.KajianLocation{
			"abc123": {ID: "loc-1", CityID: "city-2", Lat: -6.2, Lng: 106.8},
		},
	}
	feed := &fakeFeed{items: map[string][]instagram.Post{
		"kajianjakarta": {igPost("CxYz12", "Kajian di https://maps.app.goo.gl/abc123")},
	}}
	notifier := &fakeNotifier{}

	kajian := NewKajian(KajianDeps{Feed: feed, Store: store, Notifier: notifier})
	require.NoError(t, kajian.Run(context.Background()))

	require.Len(t, store.tx.upsertedKajian, 1)
	info := store.tx.upsertedKajian[0]
	require.NotNil(t, info.KajianLocationID)
	assert.Equal(t, "loc-1", *info.KajianLocationID)
	assert.Equal(t, "city-2", info.CityID)
	assert.Empty(t, notifier.calls)
}

func TestKajianUnresolvedLocationIsSoftWarning(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		accounts: []domain.InstagramAccount{{ID: "acc-1", Username: "kajianjakarta", CityID: "city-1"}},
	}
	feed := &fakeFeed{items: map[string][]instagram.Post{
		"kajianjakarta": {igPost("CxYz12", "Kajian di https://maps.app.goo.gl/unknown99")},
	}}
	notifier := &fakeNotifier{}

	kajian := NewKajian(KajianDeps{Feed: feed, Store: store, Notifier: notifier})
	require.NoError(t, kajian.Run(context.Background()))

	// The record is persisted with null location fields and the
	// account's city, and the sink is told once.
	require.Len(t, store.tx.upsertedKajian, 1)
	info := store.tx.upsertedKajian[0]
	assert.Nil(t, info.KajianLocationID)
	assert.Nil(t, info.Lat)
	assert.Equal(t, "city-1", info.CityID)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "https://maps.app.goo.gl/unknown99|CxYz12", notifier.calls[0])
}

func TestKajianNotifierFailureDoesNotFailPass(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		accounts: []domain.InstagramAccount{{ID: "acc-1", Username: "kajianjakarta", CityID: "city-1"}},
	}
	feed := &fakeFeed{items: map[string][]instagram.Post{
		"kajianjakarta": {igPost("CxYz12", "https://maps.app.goo.gl/unknown99")},
	}}
	notifier := &fakeNotifier{err: errors.New("telegram down")}

	kajian := NewKajian(KajianDeps{Feed: feed, Store: store, Notifier: notifier})
	require.NoError(t, kajian.Run(context.Background()))
	assert.Len(t, store.tx.upsertedKajian, 1)
	assert.True(t, store.committed)
}

func TestKajianCaptionWithoutLinkSkipsLookup(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		accounts: []domain.InstagramAccount{{ID: "acc-1", Username: "kajianjakarta", CityID: "city-1"}},
	}
	feed := &fakeFeed{items: map[string][]instagram.Post{
		"kajianjakarta": {igPost("CxYz12", "kajian rutin pekanan")},
	}}
	notifier := &fakeNotifier{}

	kajian := NewKajian(KajianDeps{Feed: feed, Store: store, Notifier: notifier})
	require.NoError(t, kajian.Run(context.Background()))

	require.Len(t, store.tx.upsertedKajian, 1)
	assert.Nil(t, store.tx.upsertedKajian[0].KajianLocationID)
	assert.Empty(t, notifier.calls)
}
