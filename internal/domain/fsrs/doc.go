// Package fsrs implements the FSRS scheduling engine: the weight profile
// registry, the stability/difficulty recurrence, the forgetting curve and
// interval derivation.
//
// The engine is pure. Cards go in and come out as values, the active profile and
// request retention travel in an explicit Config, and nothing is cached between
// calls, so an Engine can be shared by any number of goroutines.
//
//	cfg, err := fsrs.NewConfig(domain.ProfileStandard, 0.9)
//	if err != nil {
//	    return err
//	}
//	out, err := fsrs.NewEngine().Update(card, domain.RatingGood, time.Now(), cfg)
package fsrs
