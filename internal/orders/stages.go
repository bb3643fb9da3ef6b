package orders

type Stage string

const (
	StageConfirmed      Stage = "Confirmed"
	StageProcessing     Stage = "Processing"
	StageShipped        Stage = "Shipped"
	StageOutForDelivery Stage = "Out for Delivery"
	StageDelivered      Stage = "Delivered"
)

// Stages is the single canonical tracking timeline used by every view.
var Stages = []Stage{
	StageConfirmed,
	StageProcessing,
	StageShipped,
	StageOutForDelivery,
	StageDelivered,
}

// StageIndex locates a status on the timeline. A freshly placed (Pending)
// order sits on Confirmed and a Completed order on Delivered. Cancelled and
// unknown statuses return -1.
func StageIndex(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusCompleted:
		return len(Stages) - 1
	case StatusCancelled:
		return -1
	}
	for i, st := range Stages {
		if string(st) == string(s) {
			return i
		}
	}
	return -1
}
