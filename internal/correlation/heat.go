package correlation

// VerifyHeat reports whether a capture taken seconds after race start falls
// inside the race window. Captures at or before the start never verify.
func VerifyHeat(seconds, raceDuration, maxDeviation int) bool {
	return 0 < seconds && seconds < maxDeviation+raceDuration
}
