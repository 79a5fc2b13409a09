package risk

import "github.com/sells-group/screener-cli/internal/model"

// Altman model labels recorded on the assessment.
const (
	AltmanManufacturing    = "manufacturing"
	AltmanNonManufacturing = "non-manufacturing"
)

// altmanZScore computes the bankruptcy-distress score. Asset-heavy
// sectors use the five-ratio manufacturing model; everything else uses
// the four-ratio Z''-model, which drops the sales/assets term and
// reweights the rest. Applying the manufacturing model to a software
// balance sheet systematically misprices it.
func altmanZScore(stmts model.Statements, ttmEBIT, ttmRevenue, marketCap float64, manufacturing bool) (float64, string, bool) {
	modelName := AltmanNonManufacturing
	if manufacturing {
		modelName = AltmanManufacturing
	}

	if len(stmts.Balance) == 0 {
		return 0, modelName, false
	}
	b := stmts.Balance[0]
	if b.TotalAssets <= 0 || b.TotalLiabilities <= 0 {
		return 0, modelName, false
	}

	workingCapital := (b.CurrentAssets - b.CurrentLiabilities) / b.TotalAssets
	retained := b.RetainedEarnings / b.TotalAssets
	ebit := ttmEBIT / b.TotalAssets

	if manufacturing {
		z := 1.2*workingCapital +
			1.4*retained +
			3.3*ebit +
			0.6*(marketCap/b.TotalLiabilities) +
			1.0*(ttmRevenue/b.TotalAssets)
		return z, modelName, true
	}

	z := 6.56*workingCapital +
		3.26*retained +
		6.72*ebit +
		1.05*(b.TotalEquity/b.TotalLiabilities)
	return z, modelName, true
}
