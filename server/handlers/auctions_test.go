package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/openlot/openlot/openlot/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

func testAuctionApp(repo repositories.AuctionRepository) *fiber.App {
	app := fiber.New()
	webApp := &WebApp{App: &openlot.App{AuctionRepository: repo}}
	app.Get("/auctions/:id", AuctionsDetail(webApp))
	return app
}

func TestAuctionsDetailLookupDispatch(t *testing.T) {
	tests := []struct {
		name       string
		param      string
		setup      func(repo *mock.MockAuctionRepository)
		wantStatus int
	}{
		{
			name:  "digits-only code resolves by code",
			param: "234567",
			setup: func(repo *mock.MockAuctionRepository) {
				repo.EXPECT().
					GetByCode(gomock.Any(), "234567").
					Return(&models.Auction{ID: 9, Code: "234567"}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:  "code miss falls back to the numeric id",
			param: "234567",
			setup: func(repo *mock.MockAuctionRepository) {
				repo.EXPECT().
					GetByCode(gomock.Any(), "234567").
					Return(nil, repositories.ErrNotFound)
				repo.EXPECT().
					GetByID(gomock.Any(), int64(234567)).
					Return(&models.Auction{ID: 234567}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:  "short numeric id skips the code lookup",
			param: "42",
			setup: func(repo *mock.MockAuctionRepository) {
				repo.EXPECT().
					GetByID(gomock.Any(), int64(42)).
					Return(&models.Auction{ID: 42}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:  "alphabetic code never touches the id lookup",
			param: "K4YQ2A",
			setup: func(repo *mock.MockAuctionRepository) {
				repo.EXPECT().
					GetByCode(gomock.Any(), "K4YQ2A").
					Return(&models.Auction{ID: 7, Code: "K4YQ2A"}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:  "private auction hidden from anonymous callers",
			param: "K4YQ2A",
			setup: func(repo *mock.MockAuctionRepository) {
				repo.EXPECT().
					GetByCode(gomock.Any(), "K4YQ2A").
					Return(&models.Auction{ID: 7, Code: "K4YQ2A", Private: true}, nil)
			},
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "neither code nor id",
			param:      "not-a-code",
			setup:      func(repo *mock.MockAuctionRepository) {},
			wantStatus: fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockAuctionRepository(ctrl)
			tt.setup(repo)

			app := testAuctionApp(repo)
			resp, err := app.Test(httptest.NewRequest("GET", "/auctions/"+tt.param, nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("GET /auctions/%s status = %d, want %d", tt.param, resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
