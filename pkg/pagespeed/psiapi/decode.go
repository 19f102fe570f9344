package psiapi

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"webvitals/pkg/pagespeed"
)

// DecodeReport extracts a pagespeed.Report from a runPagespeed response body.
//
// The Lighthouse result routinely weighs several hundred kilobytes, so the
// body is walked with a streaming decoder and everything outside
// loadingExperience.metrics, lighthouseResult.audits and
// lighthouseResult.categories.performance.score is skipped. Sub-trees that are
// null or of an unexpected type are treated as absent rather than as errors.
func DecodeReport(b []byte) (*pagespeed.Report, error) {
	r := &pagespeed.Report{
		FieldMetrics: map[string]pagespeed.FieldMetric{},
		Audits:       map[string]pagespeed.Audit{},
	}

	d := jx.DecodeBytes(b)
	if d.Next() != jx.Object {
		return nil, errors.New("response is not a JSON object")
	}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "loadingExperience":
			return objOrSkip(d, func(d *jx.Decoder, key string) error {
				if key != "metrics" {
					return d.Skip()
				}

				return decodeFieldMetrics(d, r)
			})
		case "lighthouseResult":
			return objOrSkip(d, func(d *jx.Decoder, key string) error {
				switch key {
				case "audits":
					return decodeAudits(d, r)
				case "categories":
					return decodeCategories(d, r)
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode report")
	}

	return r, nil
}

func decodeFieldMetrics(d *jx.Decoder, r *pagespeed.Report) error {
	return objOrSkip(d, func(d *jx.Decoder, name string) error {
		var m pagespeed.FieldMetric
		err := objOrSkip(d, func(d *jx.Decoder, key string) error {
			if key != "percentile" {
				return d.Skip()
			}
			v, err := number(d)
			if err != nil {
				return errors.Wrapf(err, "%s percentile", name)
			}
			m.Percentile = v

			return nil
		})
		if err != nil {
			return err
		}
		r.FieldMetrics[name] = m

		return nil
	})
}

func decodeAudits(d *jx.Decoder, r *pagespeed.Report) error {
	return objOrSkip(d, func(d *jx.Decoder, id string) error {
		if id != pagespeed.AuditLCP && id != pagespeed.AuditInteractive && id != pagespeed.AuditCLS {
			return d.Skip()
		}
		if d.Next() != jx.Object {
			return d.Skip()
		}

		var a pagespeed.Audit
		err := d.Obj(func(d *jx.Decoder, key string) error {
			if key != "numericValue" {
				return d.Skip()
			}
			v, err := number(d)
			if err != nil {
				return errors.Wrapf(err, "%s numericValue", id)
			}
			a.HasNumericValue = true
			a.NumericValue = v

			return nil
		})
		if err != nil {
			return err
		}
		r.Audits[id] = a

		return nil
	})
}

func decodeCategories(d *jx.Decoder, r *pagespeed.Report) error {
	return objOrSkip(d, func(d *jx.Decoder, key string) error {
		if key != pagespeed.CategoryPerformance {
			return d.Skip()
		}

		return objOrSkip(d, func(d *jx.Decoder, key string) error {
			if key != "score" {
				return d.Skip()
			}
			v, err := number(d)
			if err != nil {
				return errors.Wrap(err, "performance score")
			}
			r.PerformanceScore = v

			return nil
		})
	})
}

// objOrSkip iterates the object at the cursor, or skips the value if it is
// anything else (null included).
func objOrSkip(d *jx.Decoder, f func(d *jx.Decoder, key string) error) error {
	if d.Next() != jx.Object {
		return d.Skip()
	}

	return d.Obj(f)
}

// number reads the value at the cursor as a float64. Non-numeric values are
// consumed and reported as nil.
func number(d *jx.Decoder) (*float64, error) {
	if d.Next() != jx.Number {
		return nil, d.Skip()
	}
	v, err := d.Float64()
	if err != nil {
		return nil, err
	}

	return &v, nil
}
