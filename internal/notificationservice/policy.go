package notificationservice

// Policy declares which events produce notifications. The coverage is
// deliberately asymmetric and explicit: post likes notify the author while
// dislikes and comment reactions never reach the emitter at all, so the only
// switches that exist are for the events that are actually produced.
type Policy struct {
	Follow   bool
	Comment  bool
	Reply    bool
	PostLike bool
}

func DefaultPolicy() Policy {
	return Policy{
		Follow:   true,
		Comment:  true,
		Reply:    true,
		PostLike: true,
	}
}
