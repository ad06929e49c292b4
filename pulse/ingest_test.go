package pulse

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/mock/gomock"

	"github.com/mengeric/cryptopulse-go/client"
	"github.com/mengeric/cryptopulse-go/mocks"
	"github.com/mengeric/cryptopulse-go/storage/memstore"
)

func TestCollectOnce(t *testing.T) {
	Convey("CollectOnce fetches then persists, labelling the failing stage", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		ctx := context.Background()

		Convey("success path writes exactly the fetched point", func() {
			api := mocks.NewMockPriceAPI(ctrl)
			api.EXPECT().FetchPrice(gomock.Any()).
				Return(client.PricePoint{TsUTC: "2026-01-01T00:00:00Z", PriceUSD: 64000}, nil)

			st := memstore.New()
			p, err := NewIngestor(api, st).CollectOnce(ctx)
			So(err, ShouldBeNil)
			So(p.PriceUSD, ShouldEqual, 64000)

			recs, err := st.LastPrices(ctx, 1)
			So(err, ShouldBeNil)
			So(recs[0].TsUTC, ShouldEqual, "2026-01-01T00:00:00Z")
			So(recs[0].PriceUSD, ShouldEqual, 64000)
		})

		Convey("fetch failure is wrapped and nothing is written", func() {
			api := mocks.NewMockPriceAPI(ctrl)
			api.EXPECT().FetchPrice(gomock.Any()).
				Return(client.PricePoint{}, errors.New("timeout"))

			st := memstore.New()
			_, err := NewIngestor(api, st).CollectOnce(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "fetch price")
			n, _ := st.CountPrices(ctx)
			So(n, ShouldEqual, 0)
		})

		Convey("store failure is labelled as such", func() {
			api := mocks.NewMockPriceAPI(ctrl)
			api.EXPECT().FetchPrice(gomock.Any()).
				Return(client.PricePoint{TsUTC: "2026-01-01T00:00:00Z", PriceUSD: 1}, nil)

			_, err := NewIngestor(api, failingStore{memstore.New()}).CollectOnce(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "store price")
		})
	})
}

// failingStore 写入必败的存储桩。
type failingStore struct{ *memstore.Store }

func (failingStore) UpsertPrice(ctx context.Context, tsUTC string, priceUSD float64) error {
	return errors.New("disk full")
}
