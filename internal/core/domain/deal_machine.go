package domain

// The deal lifecycle transition table. This is the single source of truth for
// which status changes are legal and which role may perform them; callers
// never branch on raw status strings for mutation decisions.
//
//	applied              -> active               (contractor accepts application)
//	applied              -> rejected             (contractor rejects application)
//	active               -> completion_requested (labour marks work done)
//	completion_requested -> completed            (contractor approves completion)
//	completion_requested -> active               (contractor rejects completion)

type transitionKey struct {
	from DealStatus
	to   DealStatus
}

var dealTransitions = map[transitionKey]UserRole{
	{DealApplied, DealActive}:                RoleContractor,
	{DealApplied, DealRejected}:              RoleContractor,
	{DealActive, DealCompletionRequested}:    RoleLabour,
	{DealCompletionRequested, DealCompleted}: RoleContractor,
	{DealCompletionRequested, DealActive}:    RoleContractor,
}

// transitionActors maps each reachable target status to the role allowed to
// drive a deal into it. Used for the authorization check, which runs before
// the transition-table lookup so that a wrong-role attempt is reported as
// forbidden even when the transition itself would be illegal.
var transitionActors = map[DealStatus]UserRole{
	DealActive:              RoleContractor,
	DealRejected:            RoleContractor,
	DealCompletionRequested: RoleLabour,
	DealCompleted:           RoleContractor,
}

// TransitionActor returns the role permitted to move a deal into the target
// status, and whether any role is ever permitted to.
func TransitionActor(to DealStatus) (UserRole, bool) {
	role, ok := transitionActors[to]
	return role, ok
}

// CanTransition reports whether the (from, to) pair is in the transition table.
func CanTransition(from, to DealStatus) bool {
	_, ok := dealTransitions[transitionKey{from, to}]
	return ok
}
