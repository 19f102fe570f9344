package auditor

import (
	"webvitals/pkg/domain"
	"webvitals/pkg/pagespeed"
)

// labStep describes how one metric is filled from a Lighthouse audit.
type labStep struct {
	audit   string
	divisor float64 // zero means the value is used unscaled
}

// Resolve turns a PSI report into the record of url.
//
// Field (CrUX) data is read first. If any of LCP, INP and CLS is then missing
// or zero, a lab (Lighthouse) pass fills the missing ones, metric by metric,
// and the record is labeled as lab data even when some metrics still come
// from the field pass.
func Resolve(url string, r *pagespeed.Report) domain.Record {
	var lcp, inp, cls *float64

	if m, ok := r.FieldMetrics[pagespeed.FieldLCP]; ok {
		lcp = scale(m.Percentile, 1000)
	}
	if m, ok := r.FieldMetrics[pagespeed.FieldINP]; ok {
		inp = m.Percentile
	} else if m, ok := r.FieldMetrics[pagespeed.FieldExperimentalINP]; ok {
		inp = m.Percentile
	}
	if m, ok := r.FieldMetrics[pagespeed.FieldCLS]; ok {
		cls = scale(m.Percentile, 100)
	}

	source := domain.DataSourceField
	if !domain.Present(lcp) || !domain.Present(inp) || !domain.Present(cls) {
		source = domain.DataSourceLab
		fillFromLab(r.Audits, []*(*float64){&lcp, &inp, &cls}, []labStep{
			{audit: pagespeed.AuditLCP, divisor: 1000},
			// Lighthouse has no INP; Time to Interactive stands in, in ms
			{audit: pagespeed.AuditInteractive},
			{audit: pagespeed.AuditCLS},
		})
	}

	var score *float64
	if r.PerformanceScore != nil {
		s := *r.PerformanceScore * 100
		score = &s
	}

	return domain.Record{
		URL:              url,
		Source:           source,
		PerformanceScore: score,
		LCPSeconds:       domain.Round(lcp, 2),
		LCPCategory:      domain.ClassifyLCP(lcp),
		INPMilliseconds:  domain.Round(inp, 0),
		INPCategory:      domain.ClassifyINP(inp),
		CLS:              domain.Round(cls, 3),
		CLSCategory:      domain.ClassifyCLS(cls),
	}
}

// fillFromLab fills each target that is not yet present from its audit, in
// order. An audit without numericValue, or a null value that has to be
// scaled, aborts the pass: targets resolved before it keep their values,
// later ones stay as they are.
func fillFromLab(audits map[string]pagespeed.Audit, targets []*(*float64), steps []labStep) {
	for i, step := range steps {
		target := targets[i]
		if domain.Present(*target) {
			continue
		}

		a, ok := audits[step.audit]
		if !ok {
			continue
		}
		if !a.HasNumericValue {
			return
		}
		if a.NumericValue == nil {
			if step.divisor != 0 {
				return
			}
			*target = nil

			continue
		}

		v := *a.NumericValue
		if step.divisor != 0 {
			v /= step.divisor
		}
		*target = &v
	}
}

func scale(v *float64, divisor float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v / divisor

	return &s
}
