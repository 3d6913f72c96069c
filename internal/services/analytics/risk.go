package analytics

import (
	"math"
	"sort"
	"time"

	"CardPulse/internal/domain/models"
)

// RiskProfile holds the risk and momentum fields of a FinanceSummary. Every
// field is nil when its minimum sample-size precondition is not met or the
// arithmetic would degenerate; nil means "insufficient data", which is
// distinct from "measured and found to be zero".
type RiskProfile struct {
	Vol30dAnnualized *float64
	DownsideVol      *float64
	MaxDrawdown      *float64
	SharpeRatio      *float64
	SortinoRatio     *float64
	CalmarRatio      *float64
	VaR95            *float64
	CVaR95           *float64
	Beta             *float64
	Skewness         *float64
	Kurtosis         *float64
	RSI              *float64
}

type datedReturn struct {
	day time.Time
	r   float64
}

// adjacentDailyReturns computes simple returns on exactly-adjacent calendar
// days only, with no interpolation across gaps. Zero previous prices are
// skipped rather than propagated as Inf.
func adjacentDailyReturns(series []models.DailyPoint) []datedReturn {
	var out []datedReturn
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if prev.Price <= 0 {
			continue
		}
		if !cur.Day.Equal(prev.Day.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, datedReturn{day: cur.Day, r: (cur.Price - prev.Price) / prev.Price})
	}
	return out
}

// Risk derives the full risk profile from a daily value series, using the
// benchmark (the global index) for beta when provided.
func (c Config) Risk(series []models.DailyPoint, benchmark []models.IndexPoint) RiskProfile {
	var p RiskProfile

	dated := adjacentDailyReturns(series)
	window := dated
	if c.VolWindowDays > 0 && len(window) > c.VolWindowDays {
		window = window[len(window)-c.VolWindowDays:]
	}
	rets := make([]float64, len(window))
	for i, dr := range window {
		rets[i] = dr.r
	}

	annFactor := math.Sqrt(c.TradingDaysPerYear)
	rfDaily := 0.0
	if c.TradingDaysPerYear > 0 {
		rfDaily = c.RiskFreeRate / c.TradingDaysPerYear
	}

	if len(rets) >= 2 {
		std := sampleStd(rets)
		p.Vol30dAnnualized = fptr(std * annFactor)

		mean := meanOf(rets)
		if std > 0 {
			p.SharpeRatio = fptr((mean - rfDaily) / std * annFactor)
		}

		var negs []float64
		for _, r := range rets {
			if r < 0 {
				negs = append(negs, r)
			}
		}
		if len(negs) >= 2 {
			down := sampleStd(negs)
			p.DownsideVol = fptr(down)
			if down > 0 {
				p.SortinoRatio = fptr((mean - rfDaily) / down * annFactor)
			}
		}

		sorted := make([]float64, len(rets))
		copy(sorted, rets)
		sort.Float64s(sorted)
		v := percentileLinear(sorted, 1-c.VaRConfidence)
		p.VaR95 = fptr(v)
		var tailSum float64
		var tailN int
		for _, r := range rets {
			if r <= v {
				tailSum += r
				tailN++
			}
		}
		if tailN > 0 {
			p.CVaR95 = fptr(tailSum / float64(tailN))
		}
	}

	p.MaxDrawdown = maxDrawdown(series)
	if p.MaxDrawdown != nil && *p.MaxDrawdown != 0 && len(rets) >= 2 {
		annReturn := meanOf(rets) * c.TradingDaysPerYear
		p.CalmarRatio = fptr(annReturn / math.Abs(*p.MaxDrawdown))
	}

	p.Beta = beta(dated, benchmark)

	if len(rets) >= c.MinMomentSample {
		p.Skewness, p.Kurtosis = moments(rets)
	}

	p.RSI = c.rsi(series)
	return p
}

// maxDrawdown is the most negative peak-to-trough decline of the value
// series, as a non-positive fraction. nil below two points.
func maxDrawdown(series []models.DailyPoint) *float64 {
	if len(series) < 2 {
		return nil
	}
	var worst float64
	peak := series[0].Price
	for _, p := range series {
		if p.Price > peak {
			peak = p.Price
		}
		if peak <= 0 {
			continue
		}
		dd := (p.Price - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return fptr(worst)
}

// beta regresses the series' returns on the benchmark's over the
// overlapping dates only. nil below two overlapping points or when the
// benchmark shows no variance.
func beta(series []datedReturn, benchmark []models.IndexPoint) *float64 {
	if len(series) == 0 || len(benchmark) == 0 {
		return nil
	}
	benchDaily := make([]models.DailyPoint, len(benchmark))
	for i, p := range benchmark {
		benchDaily[i] = models.DailyPoint{Day: p.Date, Price: p.Value}
	}
	benchRets := adjacentDailyReturns(benchDaily)

	byDay := make(map[string]float64, len(benchRets))
	for _, br := range benchRets {
		byDay[br.day.Format("2006-01-02")] = br.r
	}

	var xs, ys []float64
	for _, sr := range series {
		if br, ok := byDay[sr.day.Format("2006-01-02")]; ok {
			xs = append(xs, sr.r)
			ys = append(ys, br)
		}
	}
	if len(xs) < 2 {
		return nil
	}
	benchVar := covariance(ys, ys)
	if benchVar == 0 {
		return nil
	}
	return fptr(covariance(xs, ys) / benchVar)
}

// moments returns Fisher skewness and excess kurtosis of the return
// distribution, nil when the variance collapses to zero.
func moments(rets []float64) (*float64, *float64) {
	n := float64(len(rets))
	mean := meanOf(rets)
	var m2, m3, m4 float64
	for _, r := range rets {
		d := r - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return nil, nil
	}
	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4/(m2*m2) - 3
	return fptr(skew), fptr(kurt)
}

// rsi is the classic Wilder-smoothed relative strength index over the daily
// price series, clipped to [0,100]. nil below RSIPeriod+1 points.
func (c Config) rsi(series []models.DailyPoint) *float64 {
	period := c.RSIPeriod
	if period <= 0 || len(series) < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := series[i].Price - series[i-1].Price
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(series); i++ {
		change := series[i].Price - series[i-1].Price
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return fptr(100)
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return fptr(v)
}

// DailyFromIndex adapts an index point sequence to the daily series shape
// the risk calculator consumes.
func DailyFromIndex(points []models.IndexPoint) []models.DailyPoint {
	out := make([]models.DailyPoint, len(points))
	for i, p := range points {
		out[i] = models.DailyPoint{Day: p.Date, Price: p.Value}
	}
	return out
}
