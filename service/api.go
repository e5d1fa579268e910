package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/bondrv/curve"
	"github.com/meenmo/bondrv/hedge"
	"github.com/meenmo/bondrv/rv"
)

// HedgeRequest is the POST /api/hedge payload. Either Instrument names a
// listed futures contract from the built-in DV01 table, or UnitDV01 carries
// an explicit per-unit DV01. PositionDV01 may be given directly or derived:
// Bond reprices a bullet bond off its terms, Curve bumps a market's
// bootstrapped zero curve, Swap reads the annuity off a swap curve.
type HedgeRequest struct {
	Instrument   string          `json:"instrument"`
	PositionDV01 float64         `json:"positionDv01"`
	UnitDV01     float64         `json:"unitDv01"`
	Bond         *BondInput      `json:"bond,omitempty"`
	Curve        *CurveInput     `json:"curve,omitempty"`
	Swap         *SwapInput      `json:"swap,omitempty"`
	Liquidity    *LiquidityInput `json:"liquidity,omitempty"`
}

// BondInput describes a bullet bond position to derive a DV01 from.
type BondInput struct {
	Face      float64 `json:"face"`
	CouponPct float64 `json:"couponPct"`
	YieldPct  float64 `json:"yieldPct"`
	Years     float64 `json:"years"`
	Frequency int     `json:"frequency"`
}

// CurveInput derives a DV01 by bumping one pillar of a market's zero curve.
type CurveInput struct {
	Country  string  `json:"country"`
	Tenor    float64 `json:"tenor"`
	Notional float64 `json:"notional"`
}

// SwapInput derives a DV01 from the fixed-leg annuity of a par swap.
type SwapInput struct {
	Currency string  `json:"currency"`
	Tenor    float64 `json:"tenor"`
	Notional float64 `json:"notional"`
}

// LiquidityInput scores the hedge instrument's tradability.
type LiquidityInput struct {
	OnTheRun      bool    `json:"onTheRun"`
	BidAskBP      float64 `json:"bidAskBp"`
	DailyVolumeMM float64 `json:"dailyVolumeMm"`
}

// HedgeResponse is the sized hedge plus whatever the request asked to derive.
type HedgeResponse struct {
	hedge.Result
	PositionDV01   float64  `json:"positionDv01"`
	SwapTenor      float64  `json:"swapTenor,omitempty"`
	LiquidityScore *float64 `json:"liquidityScore,omitempty"`
}

// NewRouter builds the HTTP API over a refresher's latest snapshot.
func NewRouter(r *Refresher) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if _, err := r.Latest(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming up"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/countries", func(c *gin.Context) {
		snap, ok := latest(c, r)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"reference": snap.Reference,
			"countries": sortedKeys(snap.Countries),
			"asOf":      snap.AsOf,
		})
	})

	api.GET("/curves/:country", func(c *gin.Context) {
		cr, ok := market(c, r)
		if !ok {
			return
		}
		switch c.DefaultQuery("kind", string(curve.KindPar)) {
		case string(curve.KindZero):
			if cr.Zero == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "no zero curve for " + cr.Country})
				return
			}
			c.JSON(http.StatusOK, cr.Zero)
		case string(curve.KindPar):
			c.JSON(http.StatusOK, cr.Par)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be par or zero"})
		}
	})

	api.GET("/spreads/:country", func(c *gin.Context) {
		cr, ok := market(c, r)
		if !ok {
			return
		}
		mode, err := rv.ParseMode(c.Query("mode"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		series, ok := cr.Spreads[mode.String()]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no " + mode.String() + " spread for " + cr.Country})
			return
		}
		c.JSON(http.StatusOK, series)
	})

	api.GET("/matrix", func(c *gin.Context) {
		snap, ok := latest(c, r)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, snap.Matrix)
	})

	api.GET("/shape/:country", func(c *gin.Context) {
		cr, ok := market(c, r)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"shape": cr.Shape, "flies": cr.Flies})
	})

	api.GET("/carryroll/:country", func(c *gin.Context) {
		cr, ok := market(c, r)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, cr.CarryRoll)
	})

	api.GET("/omissions", func(c *gin.Context) {
		snap, ok := latest(c, r)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, snap.Omissions)
	})

	api.GET("/hedge/instruments", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tickers": hedge.Tickers(), "dv01": hedge.FuturesDV01})
	})

	api.POST("/hedge", func(c *gin.Context) {
		var req HedgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp := HedgeResponse{PositionDV01: req.PositionDV01}
		switch {
		case req.Bond != nil:
			b := req.Bond
			resp.PositionDV01 = hedge.BondDV01(b.Face, b.CouponPct, b.YieldPct, b.Years, b.Frequency)
		case req.Curve != nil:
			snap, ok := latest(c, r)
			if !ok {
				return
			}
			cr, ok := snap.Countries[req.Curve.Country]
			if !ok || cr.Zero == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "no zero curve for " + req.Curve.Country})
				return
			}
			dv01, err := hedge.CurveDV01(cr.Zero, req.Curve.Tenor, req.Curve.Notional)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			resp.PositionDV01 = dv01
		case req.Swap != nil:
			snap, ok := latest(c, r)
			if !ok {
				return
			}
			ccy := strings.ToUpper(req.Swap.Currency)
			zero, ok := snap.SwapZeros[ccy]
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no " + ccy + " swap curve"})
				return
			}
			dv01, tenor, err := hedge.SwapAnnuityDV01(zero, req.Swap.Tenor)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			// DV01 comes back per 100 notional.
			resp.PositionDV01 = dv01 / 100.0 * req.Swap.Notional
			resp.SwapTenor = tenor
		}

		var err error
		if req.UnitDV01 > 0 {
			resp.Result, err = hedge.Size(req.Instrument, resp.PositionDV01, req.UnitDV01)
		} else {
			resp.Result, err = hedge.SizeFutures(req.Instrument, resp.PositionDV01)
		}
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, hedge.ErrInsufficientData) {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if req.Liquidity != nil {
			score := hedge.LiquidityScore(req.Liquidity.OnTheRun, req.Liquidity.BidAskBP, req.Liquidity.DailyVolumeMM)
			resp.LiquidityScore = &score
		}
		c.JSON(http.StatusOK, resp)
	})

	return router
}

func latest(c *gin.Context, r *Refresher) (*Snapshot, bool) {
	snap, err := r.Latest()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return snap, true
}

func market(c *gin.Context, r *Refresher) (*CountryResult, bool) {
	snap, ok := latest(c, r)
	if !ok {
		return nil, false
	}
	cr, ok := snap.Countries[c.Param("country")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown country " + c.Param("country")})
		return nil, false
	}
	return cr, true
}
