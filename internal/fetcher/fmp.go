package fetcher

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener-cli/internal/model"
)

// FMPProvider implements Provider against the Financial Modeling Prep
// style REST API: one JSON array per endpoint, newest period first.
type FMPProvider struct {
	http *HTTPClient
}

// NewFMPProvider wraps an HTTPClient as a Provider.
func NewFMPProvider(http *HTTPClient) *FMPProvider {
	return &FMPProvider{http: http}
}

type fmpProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MktCap      float64 `json:"mktCap"`
	IsFounder   bool    `json:"isFounderCeo"`
	Description string  `json:"description"`
}

type fmpQuote struct {
	Price     float64 `json:"price"`
	MarketCap float64 `json:"marketCap"`
	PE        float64 `json:"pe"`
}

type fmpRatios struct {
	ForwardPE    float64 `json:"forwardPE"`
	PriceToSales float64 `json:"priceToSalesRatio"`
	EVToSales    float64 `json:"enterpriseValueOverRevenue"`
}

type fmpIncome struct {
	Date              string  `json:"date"`
	Revenue           float64 `json:"revenue"`
	GrossProfit       float64 `json:"grossProfit"`
	SGA               float64 `json:"sellingGeneralAndAdministrativeExpenses"`
	RD                float64 `json:"researchAndDevelopmentExpenses"`
	OperatingIncome   float64 `json:"operatingIncome"`
	NetIncome         float64 `json:"netIncome"`
	WeightedAvgShsOut float64 `json:"weightedAverageShsOutDil"`
}

type fmpBalance struct {
	Date                 string  `json:"date"`
	Cash                 float64 `json:"cashAndCashEquivalents"`
	ShortTermInvestments float64 `json:"shortTermInvestments"`
	NetReceivables       float64 `json:"netReceivables"`
	CurrentAssets        float64 `json:"totalCurrentAssets"`
	PPENet               float64 `json:"propertyPlantEquipmentNet"`
	TotalAssets          float64 `json:"totalAssets"`
	CurrentLiabilities   float64 `json:"totalCurrentLiabilities"`
	TotalLiabilities     float64 `json:"totalLiabilities"`
	TotalDebt            float64 `json:"totalDebt"`
	RetainedEarnings     float64 `json:"retainedEarnings"`
	TotalEquity          float64 `json:"totalStockholdersEquity"`
}

type fmpCashFlow struct {
	Date         string  `json:"date"`
	OperatingCF  float64 `json:"operatingCashFlow"`
	Capex        float64 `json:"capitalExpenditure"`
	Depreciation float64 `json:"depreciationAndAmortization"`
}

type fmpInsiderTrade struct {
	ReporterName    string  `json:"reportingName"`
	TransactionDate string  `json:"transactionDate"`
	TransactionType string  `json:"transactionType"`
	AcquiredShares  float64 `json:"securitiesTransacted"`
}

// sectorAliases maps provider sector/industry strings onto the internal
// sector taxonomy. Matching is substring-based on the lowercased input.
var sectorAliases = []struct {
	needle string
	sector model.Sector
}{
	{"software", model.SectorSaaS},
	{"saas", model.SectorSaaS},
	{"biotech", model.SectorBiotech},
	{"pharmaceutical", model.SectorBiotech},
	{"aerospace", model.SectorSpaceTech},
	{"space", model.SectorSpaceTech},
	{"quantum", model.SectorQuantum},
	{"semiconductor", model.SectorHardware},
	{"hardware", model.SectorHardware},
	{"electronic", model.SectorHardware},
	{"financial", model.SectorFinTech},
	{"fintech", model.SectorFinTech},
	{"consumer", model.SectorConsumer},
	{"retail", model.SectorConsumer},
	{"industrial", model.SectorIndustrial},
	{"machinery", model.SectorIndustrial},
}

// mapSector resolves a provider sector/industry pair to the internal
// taxonomy, falling back to Other.
func mapSector(sector, industry string) model.Sector {
	combined := strings.ToLower(industry + " " + sector)
	for _, alias := range sectorAliases {
		if strings.Contains(combined, alias.needle) {
			return alias.sector
		}
	}
	return model.SectorOther
}

// Profile fetches the company master record.
func (p *FMPProvider) Profile(ctx context.Context, ticker string) (*Profile, error) {
	var rows []fmpProfile
	if err := p.getArray(ctx, "/profile/"+url.PathEscape(ticker), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("fetcher: no profile for %s", ticker)
	}
	row := rows[0]
	return &Profile{
		Ticker:      row.Symbol,
		Name:        row.CompanyName,
		Sector:      mapSector(row.Sector, row.Industry),
		Industry:    row.Industry,
		MarketCap:   row.MktCap,
		FounderLed:  row.IsFounder,
		Description: row.Description,
	}, nil
}

// Quote fetches the market snapshot, combining quote and ratio endpoints.
func (p *FMPProvider) Quote(ctx context.Context, ticker string) (*model.MarketSnapshot, error) {
	var quotes []fmpQuote
	if err := p.getArray(ctx, "/quote/"+url.PathEscape(ticker), nil, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, eris.Errorf("fetcher: no quote for %s", ticker)
	}

	snap := &model.MarketSnapshot{
		Price:      quotes[0].Price,
		MarketCap:  quotes[0].MarketCap,
		TrailingPE: quotes[0].PE,
	}

	// Ratios are best-effort; a missing row leaves the multiples zero and
	// the valuation pillar degrades on its own.
	var ratios []fmpRatios
	if err := p.getArray(ctx, "/ratios-ttm/"+url.PathEscape(ticker), nil, &ratios); err == nil && len(ratios) > 0 {
		snap.ForwardPE = ratios[0].ForwardPE
		snap.PriceToSales = ratios[0].PriceToSales
		snap.EVToSales = ratios[0].EVToSales
	}

	return snap, nil
}

// IncomeStatements fetches quarterly income statements, newest first.
func (p *FMPProvider) IncomeStatements(ctx context.Context, ticker string, limit int) ([]model.IncomePeriod, error) {
	var rows []fmpIncome
	if err := p.getArray(ctx, "/income-statement/"+url.PathEscape(ticker), quarterParams(limit), &rows); err != nil {
		return nil, err
	}
	out := make([]model.IncomePeriod, len(rows))
	for i, r := range rows {
		out[i] = model.IncomePeriod{
			Date:                  parseDate(r.Date),
			Revenue:               r.Revenue,
			GrossProfit:           r.GrossProfit,
			SGA:                   r.SGA,
			RDExpense:             r.RD,
			OperatingIncome:       r.OperatingIncome,
			NetIncome:             r.NetIncome,
			WeightedDilutedShares: r.WeightedAvgShsOut,
		}
	}
	return out, nil
}

// BalanceSheets fetches quarterly balance sheets, newest first.
func (p *FMPProvider) BalanceSheets(ctx context.Context, ticker string, limit int) ([]model.BalancePeriod, error) {
	var rows []fmpBalance
	if err := p.getArray(ctx, "/balance-sheet-statement/"+url.PathEscape(ticker), quarterParams(limit), &rows); err != nil {
		return nil, err
	}
	out := make([]model.BalancePeriod, len(rows))
	for i, r := range rows {
		out[i] = model.BalancePeriod{
			Date:                 parseDate(r.Date),
			Cash:                 r.Cash,
			ShortTermInvestments: r.ShortTermInvestments,
			Receivables:          r.NetReceivables,
			CurrentAssets:        r.CurrentAssets,
			PPENet:               r.PPENet,
			TotalAssets:          r.TotalAssets,
			CurrentLiabilities:   r.CurrentLiabilities,
			TotalLiabilities:     r.TotalLiabilities,
			TotalDebt:            r.TotalDebt,
			RetainedEarnings:     r.RetainedEarnings,
			TotalEquity:          r.TotalEquity,
		}
	}
	return out, nil
}

// CashFlowStatements fetches quarterly cash flow statements, newest first.
// Capex is normalized to a positive outflow.
func (p *FMPProvider) CashFlowStatements(ctx context.Context, ticker string, limit int) ([]model.CashFlowPeriod, error) {
	var rows []fmpCashFlow
	if err := p.getArray(ctx, "/cash-flow-statement/"+url.PathEscape(ticker), quarterParams(limit), &rows); err != nil {
		return nil, err
	}
	out := make([]model.CashFlowPeriod, len(rows))
	for i, r := range rows {
		capex := r.Capex
		if capex < 0 {
			capex = -capex
		}
		out[i] = model.CashFlowPeriod{
			Date:              parseDate(r.Date),
			OperatingCashFlow: r.OperatingCF,
			Capex:             capex,
			Depreciation:      r.Depreciation,
		}
	}
	return out, nil
}

// InsiderBuys fetches open-market insider purchases inside the lookback
// window. Sales and grants are filtered out.
func (p *FMPProvider) InsiderBuys(ctx context.Context, ticker string, lookbackDays int) ([]model.InsiderBuy, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var rows []fmpInsiderTrade
	if err := p.getArray(ctx, "/insider-trading", params, &rows); err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	var buys []model.InsiderBuy
	for _, r := range rows {
		if !strings.HasPrefix(strings.ToUpper(r.TransactionType), "P") || r.AcquiredShares <= 0 {
			continue
		}
		if r.TransactionDate < cutoff {
			continue
		}
		buys = append(buys, model.InsiderBuy{
			Name: r.ReporterName,
			Date: r.TransactionDate,
		})
	}
	return buys, nil
}

// parseDate parses the provider's YYYY-MM-DD date, returning the zero
// time for malformed input.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func quarterParams(limit int) url.Values {
	params := url.Values{}
	params.Set("period", "quarter")
	params.Set("limit", strconv.Itoa(limit))
	return params
}

func (p *FMPProvider) getArray(ctx context.Context, path string, params url.Values, out any) error {
	body, err := p.http.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "fetcher: decode %s", path)
	}
	return nil
}
