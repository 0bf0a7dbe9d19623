package ingestion

import (
	"github.com/richarq/admetrics/internal/domain"
)

// field names the semantic columns the parser cares about.
type field string

const (
	fieldCampaignName  field = "campaignName"
	fieldDate          field = "date"
	fieldDateStart     field = "dateStart"
	fieldDateEnd       field = "dateEnd"
	fieldImpressions   field = "impressions"
	fieldClicks        field = "clicks"
	fieldSpend         field = "spend"
	fieldConversions   field = "conversions"
	fieldCPC           field = "cpc"
	fieldCPM           field = "cpm"
	fieldCTR           field = "ctr"
	fieldResults       field = "results"
	fieldCostPerResult field = "costPerResult"
	fieldReach         field = "reach"
	fieldStatus        field = "status"
	fieldBudget        field = "budget"
)

// ColumnMapping records, per semantic field, which column index of the
// current file supplies it. -1 means the file has no such column and every
// access must treat the field as optional. Built once per file.
type ColumnMapping struct {
	CampaignName  int
	Date          int
	DateStart     int
	DateEnd       int
	Impressions   int
	Clicks        int
	Spend         int
	Conversions   int
	CPC           int
	CPM           int
	CTR           int
	Results       int
	CostPerResult int
	Reach         int
	Status        int
	Budget        int
}

func emptyColumnMapping() ColumnMapping {
	return ColumnMapping{
		CampaignName:  -1,
		Date:          -1,
		DateStart:     -1,
		DateEnd:       -1,
		Impressions:   -1,
		Clicks:        -1,
		Spend:         -1,
		Conversions:   -1,
		CPC:           -1,
		CPM:           -1,
		CTR:           -1,
		Results:       -1,
		CostPerResult: -1,
		Reach:         -1,
		Status:        -1,
		Budget:        -1,
	}
}

// Per-platform synonym tables: normalized header -> semantic field. Kept as
// data so supporting a new platform is a table addition, not a new code path.
// Keys are already normalized (lowercase, no diacritics, a-z0-9 only); the
// Spanish entries come from the es-locale exports these platforms produce.
var platformColumns = map[domain.Platform]map[string]field{
	domain.PlatformGoogleAds: {
		"campana":          fieldCampaignName,
		"campania":         fieldCampaignName,
		"campaign":         fieldCampaignName,
		"estadodelacampana": fieldStatus,
		"presupuesto":      fieldBudget,
		"clics":            fieldClicks,
		"clicks":           fieldClicks,
		"impr":             fieldImpressions,
		"impressions":      fieldImpressions,
		"ctr":              fieldCTR,
		"porcentajedeconv": fieldCTR,
		"promcpc":          fieldCPC,
		"cpcpromedio":      fieldCPC,
		"costo":            fieldSpend,
		"cost":             fieldSpend,
		"conversiones":     fieldConversions,
		"conversions":      fieldConversions,
		"costoconv":        fieldCostPerResult,
		"costconv":         fieldCostPerResult,
	},
	domain.PlatformMetaAds: {
		"iniciodelinforme":                fieldDateStart,
		"findelinforme":                   fieldDateEnd,
		"nombredelacampana":               fieldCampaignName,
		"entregadelacampana":              fieldStatus,
		"resultados":                      fieldResults,
		"costoporresultados":              fieldCostPerResult,
		"presupuestodelconjuntodeanuncios": fieldBudget,
		"importegastadousd":               fieldSpend,
		"impresiones":                     fieldImpressions,
		"alcance":                         fieldReach,
		"cpmcostopormilimpresionesusd":    fieldCPM,
		"clicsenelenlace":                 fieldClicks,
		"cpccostoporclicenelenlaceusd":    fieldCPC,
	},
	domain.PlatformTikTokAds: {
		"campaignname":         fieldCampaignName,
		"primarystatus":        fieldStatus,
		"campaignbudget":       fieldBudget,
		"cost":                 fieldSpend,
		"cpcdestination":       fieldCPC,
		"cpm":                  fieldCPM,
		"impressions":          fieldImpressions,
		"clicksdestination":    fieldClicks,
		"ctrdestination":       fieldCTR,
		"conversionsmmp":       fieldConversions,
		"costperconversionmmp": fieldCostPerResult,
		"costperresult":        fieldCostPerResult,
		"results":              fieldResults,
	},
}

// mapColumns resolves which column index supplies each semantic field for the
// given platform. First match wins: a duplicate header for an already
// assigned field is ignored. Fields with no matching header stay -1.
func mapColumns(headers map[int]string, platform domain.Platform) ColumnMapping {
	mapping := emptyColumnMapping()
	synonyms := platformColumns[platform]
	if synonyms == nil {
		return mapping
	}

	// Walk columns in index order so "first match wins" is deterministic.
	maxIdx := -1
	for idx := range headers {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	for idx := 0; idx <= maxIdx; idx++ {
		normalized, ok := headers[idx]
		if !ok || normalized == "" {
			continue
		}
		semantic, ok := synonyms[normalized]
		if !ok {
			continue
		}
		slot := mapping.slot(semantic)
		if slot != nil && *slot == -1 {
			*slot = idx
		}
	}
	return mapping
}

func (m *ColumnMapping) slot(f field) *int {
	switch f {
	case fieldCampaignName:
		return &m.CampaignName
	case fieldDate:
		return &m.Date
	case fieldDateStart:
		return &m.DateStart
	case fieldDateEnd:
		return &m.DateEnd
	case fieldImpressions:
		return &m.Impressions
	case fieldClicks:
		return &m.Clicks
	case fieldSpend:
		return &m.Spend
	case fieldConversions:
		return &m.Conversions
	case fieldCPC:
		return &m.CPC
	case fieldCPM:
		return &m.CPM
	case fieldCTR:
		return &m.CTR
	case fieldResults:
		return &m.Results
	case fieldCostPerResult:
		return &m.CostPerResult
	case fieldReach:
		return &m.Reach
	case fieldStatus:
		return &m.Status
	case fieldBudget:
		return &m.Budget
	}
	return nil
}
