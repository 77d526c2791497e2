package sentinel

import "time"

// Clock returns the current time. Engine and Store accept one so that
// retention and recovery tests can inject virtual time instead of depending
// on the wall clock, per the design note on parameterizing LastT retention.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }
