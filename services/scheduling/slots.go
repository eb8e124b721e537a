package scheduling

// SlotTimes computes the ordered candidate slot start times for an
// availability window, covering [start, end) stepped by slotDuration. Times
// are minutes from midnight. Pure: booking state is joined in by the caller.
func SlotTimes(start, end, slotDuration int) ([]int, error) {
	if end <= start {
		return nil, NewInvalidWindowError("window end %d must be after start %d", end, start)
	}
	if slotDuration <= 0 {
		return nil, NewInvalidWindowError("slot duration %d must be positive", slotDuration)
	}

	var times []int
	for t := start; t < end; t += slotDuration {
		times = append(times, t)
	}
	return times, nil
}
