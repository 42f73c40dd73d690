package propagation

// Channel names, one per propagation direction. Each channel has
// consumer-group semantics: every logical consumer group receives each
// message at least once, unordered across producers.
const (
	// ChannelCompanyEvents carries Company->User propagation and is
	// consumed by the user service.
	ChannelCompanyEvents = "company-events"

	// ChannelUserEvents carries User->Company propagation and is consumed
	// by the company service.
	ChannelUserEvents = "user-events"
)

// Consumer group names, one per consuming service instance pool.
const (
	GroupUserService    = "user-group"
	GroupCompanyService = "company-group"
)
