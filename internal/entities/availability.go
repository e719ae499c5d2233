package entities

// AvailableTimes maps a room id to the start epochs (unix seconds) of its
// free hour slots, in chronological order.
type AvailableTimes map[int][]int64
