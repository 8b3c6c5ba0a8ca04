package report

import "encoding/json"

type bodyJSON struct {
	IsNewOrg         bool                `json:"is_new_org"`
	Organization     OrganizationSummary `json:"organization"`
	Period           PeriodInfo          `json:"period"`
	MemberDataThis   MemberCounts        `json:"member_data_this"`
	MeetingsDataThis MeetingsData        `json:"meetings_data_this"`
	MemberDataLast   *MemberCounts       `json:"member_data_last"`
	MeetingsDataLast *MeetingsData       `json:"meetings_data_last"`
	Members          []MemberRow         `json:"members"`
	EventTypeCounts  map[string]int      `json:"event_type_counts"`
}

func (b Body) wire(isNew bool) bodyJSON {
	members := b.Members
	if members == nil {
		members = []MemberRow{}
	}
	return bodyJSON{
		IsNewOrg:         isNew,
		Organization:     b.Organization,
		Period:           b.Period,
		MemberDataThis:   b.MemberDataThis,
		MeetingsDataThis: b.MeetingsDataThis,
		Members:          members,
		EventTypeCounts:  b.EventTypeCounts,
	}
}

func (r NewOrgReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Body.wire(true))
}

func (r EstablishedOrgReport) MarshalJSON() ([]byte, error) {
	wire := r.Body.wire(false)
	wire.MemberDataLast = &r.MemberDataLast
	wire.MeetingsDataLast = &r.MeetingsDataLast
	return json.Marshal(wire)
}
