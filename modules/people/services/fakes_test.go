package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/invitation"
	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/membership"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/absence"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/checklist"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/compliance"
	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
)

const (
	testOrgID         = "11111111-1111-4111-8111-111111111111"
	testUserID        = "22222222-2222-4222-8222-222222222222"
	testTargetUserID  = "33333333-3333-4333-8333-333333333333"
	testProfileID     = "44444444-4444-4444-8444-444444444444"
	testCorrelationID = "55555555-5555-4555-8555-555555555555"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testAuth() security.Authorization {
	return security.NewAuthorization(
		testOrgID,
		testUserID,
		"orgAdmin",
		security.ResidencyUKOnly,
		security.ClassificationOfficial,
		"test",
		testCorrelationID,
	)
}

type idSeq struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *idSeq) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type fakeProfiles struct {
	mu       sync.Mutex
	ids      idSeq
	byID     map[string]*employee.Profile
	created  []employee.Profile
	updates  []employee.ProfileUpdate
	links    []string
	deleted  []string
	failFind error
}

func newFakeProfiles(seed ...employee.Profile) *fakeProfiles {
	f := &fakeProfiles{ids: idSeq{prefix: "profile"}, byID: map[string]*employee.Profile{}}
	for _, p := range seed {
		p := p
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) copyOf(p *employee.Profile) *employee.Profile {
	c := *p
	return &c
}

func (f *fakeProfiles) GetByID(_ context.Context, orgID, profileID string) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[profileID]
	if !ok || p.OrgID != orgID {
		return nil, employee.ErrProfileNotFound
	}
	return f.copyOf(p), nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, orgID, userID string) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.OrgID == orgID && p.UserID == userID && userID != "" {
			return f.copyOf(p), nil
		}
	}
	return nil, employee.ErrProfileNotFound
}

func (f *fakeProfiles) FindByEmployeeNumber(_ context.Context, orgID, employeeNumber string) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind != nil {
		return nil, f.failFind
	}
	return f.findLocked(orgID, employeeNumber), nil
}

func (f *fakeProfiles) findLocked(orgID, employeeNumber string) *employee.Profile {
	for _, p := range f.byID {
		if p.OrgID == orgID && p.EmployeeNumber == employeeNumber {
			return f.copyOf(p)
		}
	}
	return nil
}

// Create mirrors the persistence upsert: a row with the same employee number
// owned by the same user is completed in place.
func (f *fakeProfiles) Create(_ context.Context, profile employee.Profile) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, profile)
	if existing := f.findLocked(profile.OrgID, profile.EmployeeNumber); existing != nil {
		if existing.UserID != profile.UserID {
			return nil, employee.ErrEmployeeNumberTaken
		}
		profile.ID = existing.ID
	} else {
		profile.ID = f.ids.next()
	}
	stored := profile
	f.byID[profile.ID] = &stored
	return f.copyOf(&stored), nil
}

func (f *fakeProfiles) Update(_ context.Context, orgID, profileID string, changes employee.ProfileUpdate) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, changes)
	p, ok := f.byID[profileID]
	if !ok || p.OrgID != orgID {
		return nil, employee.ErrProfileNotFound
	}
	if changes.EmploymentStatus != nil {
		p.EmploymentStatus = *changes.EmploymentStatus
	}
	if changes.EndDate != nil {
		end := *changes.EndDate
		p.EndDate = &end
	}
	if changes.EligibleLeaveTypes != nil {
		p.EligibleLeaveTypes = append([]string(nil), (*changes.EligibleLeaveTypes)...)
	}
	return f.copyOf(p), nil
}

func (f *fakeProfiles) LinkToUser(_ context.Context, orgID, employeeNumber, userID string) (*employee.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, employeeNumber+"->"+userID)
	for _, p := range f.byID {
		if p.OrgID == orgID && p.EmployeeNumber == employeeNumber {
			p.UserID = userID
			return f.copyOf(p), nil
		}
	}
	return nil, employee.ErrProfileNotFound
}

func (f *fakeProfiles) Delete(_ context.Context, orgID, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, profileID)
	delete(f.byID, profileID)
	return nil
}

type fakeContracts struct {
	mu      sync.Mutex
	ids     idSeq
	byID    map[string]*employee.Contract
	created []employee.Contract
	updates []employee.ContractUpdate
	deleted []string
}

func newFakeContracts(seed ...employee.Contract) *fakeContracts {
	f := &fakeContracts{ids: idSeq{prefix: "contract"}, byID: map[string]*employee.Contract{}}
	for _, c := range seed {
		c := c
		f.byID[c.ID] = &c
	}
	return f
}

func (f *fakeContracts) GetByID(_ context.Context, orgID, contractID string) (*employee.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[contractID]
	if !ok || c.OrgID != orgID {
		return nil, employee.ErrContractNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeContracts) GetLatestForUser(_ context.Context, orgID, userID string) (*employee.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.OrgID == orgID && c.UserID == userID {
			out := *c
			return &out, nil
		}
	}
	return nil, employee.ErrContractNotFound
}

func (f *fakeContracts) Create(_ context.Context, contract employee.Contract) (*employee.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, contract)
	contract.ID = f.ids.next()
	stored := contract
	f.byID[contract.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeContracts) Update(_ context.Context, orgID, contractID string, changes employee.ContractUpdate) (*employee.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, changes)
	c, ok := f.byID[contractID]
	if !ok || c.OrgID != orgID {
		return nil, employee.ErrContractNotFound
	}
	if changes.TerminationReason != nil {
		c.TerminationReason = *changes.TerminationReason
	}
	if changes.EndDate != nil {
		end := *changes.EndDate
		c.EndDate = &end
	}
	out := *c
	return &out, nil
}

func (f *fakeContracts) Delete(_ context.Context, _, contractID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, contractID)
	delete(f.byID, contractID)
	return nil
}

type fakeInvitations struct {
	mu       sync.Mutex
	byToken  map[string]*invitation.Invitation
	created  []invitation.Invitation
	accepted int
	reopened []string
}

func newFakeInvitations(seed ...invitation.Invitation) *fakeInvitations {
	f := &fakeInvitations{byToken: map[string]*invitation.Invitation{}}
	for _, inv := range seed {
		inv := inv
		f.byToken[inv.Token] = &inv
	}
	return f
}

func (f *fakeInvitations) GetByToken(_ context.Context, token string) (*invitation.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byToken[token]
	if !ok {
		return nil, invitation.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (f *fakeInvitations) Create(_ context.Context, inv invitation.Invitation) (*invitation.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, inv)
	stored := inv
	f.byToken[inv.Token] = &stored
	out := stored
	return &out, nil
}

func (f *fakeInvitations) MarkAccepted(_ context.Context, _, token, userID string, at time.Time) (*invitation.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byToken[token]
	if !ok {
		return nil, invitation.ErrNotFound
	}
	if inv.Status != invitation.StatusPending {
		return nil, invitation.ErrNotPending
	}
	inv.Status = invitation.StatusAccepted
	inv.AcceptedAt = &at
	inv.AcceptedByUserID = userID
	f.accepted++
	out := *inv
	return &out, nil
}

func (f *fakeInvitations) Reopen(_ context.Context, _, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reopened = append(f.reopened, token)
	if inv, ok := f.byToken[token]; ok {
		inv.Status = invitation.StatusPending
		inv.AcceptedAt = nil
		inv.AcceptedByUserID = ""
	}
	return nil
}

func (f *fakeInvitations) status(token string) invitation.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byToken[token].Status
}

type fakeOrganizations struct {
	orgs map[string]membership.Organization
}

func (f *fakeOrganizations) GetByID(_ context.Context, orgID string) (*membership.Organization, error) {
	org, ok := f.orgs[orgID]
	if !ok {
		return nil, membership.ErrOrganizationNotFound
	}
	return &org, nil
}

// fakeMemberships seeds the skeleton profile the way the membership store does.
type fakeMemberships struct {
	mu       sync.Mutex
	profiles *fakeProfiles
	members  map[string]membership.Membership
	created  []membership.NewMember
	deleted  []string
}

func newFakeMemberships(profiles *fakeProfiles, existing ...membership.Membership) *fakeMemberships {
	f := &fakeMemberships{profiles: profiles, members: map[string]membership.Membership{}}
	for _, m := range existing {
		f.members[m.OrgID+"/"+m.UserID] = m
	}
	return f
}

func (f *fakeMemberships) Find(_ context.Context, orgID, userID string) (*membership.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[orgID+"/"+userID]
	if !ok {
		return nil, membership.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMemberships) CreateWithProfile(ctx context.Context, m membership.NewMember) (*membership.Membership, error) {
	f.mu.Lock()
	f.created = append(f.created, m)
	f.members[m.Membership.OrgID+"/"+m.Membership.UserID] = m.Membership
	f.mu.Unlock()
	if f.profiles != nil {
		if _, err := f.profiles.Create(ctx, m.Profile); err != nil {
			return nil, err
		}
	}
	out := m.Membership
	return &out, nil
}

func (f *fakeMemberships) Delete(_ context.Context, orgID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	delete(f.members, orgID+"/"+userID)
	return nil
}

type fakeBilling struct {
	calls int
	err   error
}

func (f *fakeBilling) SyncSeats(context.Context, string) error {
	f.calls++
	return f.err
}

type fakeUsers struct {
	synced []SyncedUser
}

func (f *fakeUsers) UpsertUser(_ context.Context, user SyncedUser) error {
	f.synced = append(f.synced, user)
	return nil
}

type ensureCall struct {
	EmployeeNumber string
	Year           int
	LeaveTypes     []string
	AuditSource    string
}

type cancelCall struct {
	RequestID   string
	CancelledBy string
	Reason      string
}

type fakeLeave struct {
	mu        sync.Mutex
	ensures   []ensureCall
	requests  []leave.Request
	balances  []leave.Balance
	cancels   []cancelCall
	listCalls int
	cancelErr map[string]error
}

func (f *fakeLeave) EnsureEmployeeBalances(_ context.Context, auth security.Authorization, employeeNumber string, year int, leaveTypes []string) (leave.EnsureBalancesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensures = append(f.ensures, ensureCall{
		EmployeeNumber: employeeNumber,
		Year:           year,
		LeaveTypes:     append([]string(nil), leaveTypes...),
		AuditSource:    auth.AuditSource,
	})
	out := make([]leave.Balance, 0, len(leaveTypes))
	for _, t := range leaveTypes {
		out = append(out, leave.Balance{EmployeeNumber: employeeNumber, LeaveType: t, Year: year})
	}
	return leave.EnsureBalancesResult{EnsuredBalances: out}, nil
}

func (f *fakeLeave) GetLeaveBalances(_ context.Context, _ security.Authorization, employeeNumber string, year int) ([]leave.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.Balance
	for _, b := range f.balances {
		if b.EmployeeNumber == employeeNumber && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeLeave) ListLeaveRequests(_ context.Context, _ security.Authorization, filter leave.RequestFilter) ([]leave.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []leave.Request
	for _, r := range f.requests {
		if r.EmployeeNumber != filter.EmployeeNumber {
			continue
		}
		for _, s := range filter.Statuses {
			if r.Status == s {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeLeave) CancelLeaveRequest(_ context.Context, _ security.Authorization, requestID, cancelledBy, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErr[requestID]; err != nil {
		return err
	}
	f.cancels = append(f.cancels, cancelCall{RequestID: requestID, CancelledBy: cancelledBy, Reason: reason})
	return nil
}

func (f *fakeLeave) cancelledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.cancels))
	for _, c := range f.cancels {
		ids = append(ids, c.RequestID)
	}
	sort.Strings(ids)
	return ids
}

type fakeAbsences struct {
	mu        sync.Mutex
	items     []absence.Absence
	filters   []absence.Filter
	cancelled []string
}

func (f *fakeAbsences) ListAbsences(_ context.Context, _ security.Authorization, filter absence.Filter) ([]absence.Absence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	var out []absence.Absence
	for _, a := range f.items {
		if a.UserID == filter.UserID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAbsences) CancelAbsence(_ context.Context, _ security.Authorization, absenceID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, absenceID)
	return nil
}

type fakeCompliance struct {
	status      *compliance.Status
	assignments []compliance.PackAssignment
}

func (f *fakeCompliance) GetStatusForUser(context.Context, security.Authorization, string) (*compliance.Status, error) {
	return f.status, nil
}

func (f *fakeCompliance) AssignCompliancePack(_ context.Context, _ security.Authorization, a compliance.PackAssignment) error {
	f.assignments = append(f.assignments, a)
	return nil
}

type fakeChecklists struct {
	templates map[string]checklist.Template
	instances []checklist.Instance
}

func (f *fakeChecklists) GetByID(_ context.Context, _, templateID string) (*checklist.Template, error) {
	t, ok := f.templates[templateID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeChecklists) FindActive(_ context.Context, orgID, employeeNumber string) (*checklist.Instance, error) {
	for _, inst := range f.instances {
		if inst.OrgID == orgID && inst.EmployeeNumber == employeeNumber && inst.Status == checklist.InstanceInProgress {
			out := inst
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeChecklists) Create(_ context.Context, inst checklist.Instance) (*checklist.Instance, error) {
	inst.ID = fmt.Sprintf("checklist-%d", len(f.instances)+1)
	f.instances = append(f.instances, inst)
	return &inst, nil
}

type recordingGuard struct {
	mu       sync.Mutex
	requests []AccessRequest
	deny     map[string]bool
}

func (g *recordingGuard) EnsureOrgAccess(_ context.Context, _ security.Authorization, req AccessRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.deny[req.ResourceType+":"+req.Action] {
		return authorizationError(fmt.Errorf("denied %s %s", req.ResourceType, req.Action))
	}
	return nil
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated [][]cache.Scope
	registered  []cache.Scope
	saved       []cache.Entry
}

func (c *recordingCache) Register(_ context.Context, keys ...cache.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.registered = append(c.registered, k.Scope)
	}
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, keys ...cache.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	scopes := make([]cache.Scope, 0, len(keys))
	for _, k := range keys {
		scopes = append(scopes, k.Scope)
	}
	c.invalidated = append(c.invalidated, scopes)
	return nil
}

func (c *recordingCache) Load(context.Context, []cache.Key, cache.Entry, any) (bool, error) {
	return false, nil
}

func (c *recordingCache) Save(_ context.Context, _ []cache.Key, entry cache.Entry, _ any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, entry)
	return nil
}

func (c *recordingCache) allInvalidated() []cache.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []cache.Scope
	for _, batch := range c.invalidated {
		out = append(out, batch...)
	}
	return out
}

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
	err    error
}

func (a *recordingAudit) RecordAuditEvent(_ context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return a.err
}

type fakeAutomationStore struct {
	mu          sync.Mutex
	ids         idSeq
	mentors     []automation.MentorAssignment
	workflows   map[string]automation.WorkflowTemplate
	runs        []automation.WorkflowRun
	sequences   map[string]automation.EmailSequenceTemplate
	enrollments []automation.EmailSequenceEnrollment
	deliveries  []automation.EmailSequenceDelivery
	tasks       []automation.ProvisioningTask
	documents   map[string]automation.DocumentTemplate
	assignments []automation.DocumentAssignment
	definitions map[string]automation.MetricDefinition
	results     []automation.MetricResult
	failTasks   error
}

func newFakeAutomationStore() *fakeAutomationStore {
	return &fakeAutomationStore{
		ids:         idSeq{prefix: "artifact"},
		workflows:   map[string]automation.WorkflowTemplate{},
		sequences:   map[string]automation.EmailSequenceTemplate{},
		documents:   map[string]automation.DocumentTemplate{},
		definitions: map[string]automation.MetricDefinition{},
	}
}

func (s *fakeAutomationStore) CreateAssignment(_ context.Context, a automation.MentorAssignment) (*automation.MentorAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.ids.next()
	s.mentors = append(s.mentors, a)
	return &a, nil
}

type workflowTemplates struct{ s *fakeAutomationStore }

func (w workflowTemplates) GetTemplate(_ context.Context, _, id string) (*automation.WorkflowTemplate, error) {
	t, ok := w.s.workflows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeAutomationStore) CreateRun(_ context.Context, run automation.WorkflowRun) (*automation.WorkflowRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = s.ids.next()
	s.runs = append(s.runs, run)
	return &run, nil
}

type sequenceTemplates struct{ s *fakeAutomationStore }

func (q sequenceTemplates) GetTemplate(_ context.Context, _, id string) (*automation.EmailSequenceTemplate, error) {
	t, ok := q.s.sequences[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeAutomationStore) CreateEnrollment(_ context.Context, e automation.EmailSequenceEnrollment) (*automation.EmailSequenceEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.ids.next()
	s.enrollments = append(s.enrollments, e)
	return &e, nil
}

func (s *fakeAutomationStore) CreateDelivery(_ context.Context, d automation.EmailSequenceDelivery) (*automation.EmailSequenceDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.ids.next()
	s.deliveries = append(s.deliveries, d)
	return &d, nil
}

func (s *fakeAutomationStore) CreateTask(_ context.Context, task automation.ProvisioningTask) (*automation.ProvisioningTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTasks != nil {
		return nil, s.failTasks
	}
	task.ID = s.ids.next()
	s.tasks = append(s.tasks, task)
	return &task, nil
}

type documentTemplates struct{ s *fakeAutomationStore }

func (d documentTemplates) GetTemplate(_ context.Context, _, id string) (*automation.DocumentTemplate, error) {
	t, ok := d.s.documents[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type documentAssignments struct{ s *fakeAutomationStore }

func (d documentAssignments) CreateAssignment(_ context.Context, a automation.DocumentAssignment) (*automation.DocumentAssignment, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	a.ID = d.s.ids.next()
	d.s.assignments = append(d.s.assignments, a)
	return &a, nil
}

type metricDefinitions struct{ s *fakeAutomationStore }

func (m metricDefinitions) GetByKey(_ context.Context, _, key string) (*automation.MetricDefinition, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	def, ok := m.s.definitions[key]
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (m metricDefinitions) Create(_ context.Context, def automation.MetricDefinition) (*automation.MetricDefinition, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	def.ID = m.s.ids.next()
	m.s.definitions[def.Key] = def
	return &def, nil
}

func (s *fakeAutomationStore) CreateResult(_ context.Context, r automation.MetricResult) (*automation.MetricResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.ids.next()
	s.results = append(s.results, r)
	return &r, nil
}

func (s *fakeAutomationStore) dependencies(profiles employee.ProfileRepository, guard AccessGuard, policy AutomationFailurePolicy) AutomationDependencies {
	return AutomationDependencies{
		Profiles:            profiles,
		Mentors:             s,
		WorkflowTemplates:   workflowTemplates{s},
		WorkflowRuns:        s,
		EmailTemplates:      sequenceTemplates{s},
		EmailEnrollments:    s,
		EmailDeliveries:     s,
		ProvisioningTasks:   s,
		DocumentTemplates:   documentTemplates{s},
		DocumentAssignments: documentAssignments{s},
		MetricDefinitions:   metricDefinitions{s},
		MetricResults:       s,
		Guard:               guard,
		FailurePolicy:       policy,
		Now:                 fixedClock,
	}
}
