package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dustin/go-humanize"

	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/internal/domain/report"
	"member-tracker-go/internal/domain/semester"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"comma":   func(v int) string { return humanize.Comma(int64(v)) },
	"decimal": func(v float64) string { return humanize.FtoaWithDigits(v, 2) },
}

// Renderer turns domain results into html email messages.
type Renderer struct {
	appName   string
	templates map[Kind]*template.Template
}

func NewRenderer(appName string) (*Renderer, error) {
	r := &Renderer{appName: appName, templates: make(map[Kind]*template.Template)}
	for _, kind := range []Kind{KindStatus, KindSemesterReport, KindAnnualReport, KindMembershipAchieved} {
		tmpl, err := template.New(string(kind)+".html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

type orgView struct {
	Name  string
	Email string
}

type periodView struct {
	AppName      string
	Organization orgView
	PeriodLabel  string
	IsNewOrg     bool
	MembersThis  report.MemberCounts
	MeetingsThis report.MeetingsData
	MembersLast  *report.MemberCounts
	MeetingsLast *report.MeetingsData
	Members      []report.MemberRow
}

type memberView struct {
	AppName      string
	Organization orgView
	MemberName   string
	SemesterName string
	Threshold    int
	Evaluation   membership.Evaluation
}

// PeriodReport renders a semester or annual report addressed to the
// organization's contact email.
func (r *Renderer) PeriodReport(rep report.Report) (Message, error) {
	body := rep.Summary()
	kind, label := periodLabel(body.Period)

	view := periodView{
		AppName:      r.appName,
		Organization: orgView{Name: body.Organization.Name, Email: body.Organization.Email},
		PeriodLabel:  label,
		IsNewOrg:     rep.IsNewOrg(),
		MembersThis:  body.MemberDataThis,
		MeetingsThis: body.MeetingsDataThis,
		Members:      body.Members,
	}
	if established, ok := rep.(report.EstablishedOrgReport); ok {
		view.MembersLast = &established.MemberDataLast
		view.MeetingsLast = &established.MeetingsDataLast
	}

	html, err := r.execute(kind, view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		TemplateKind:      kind,
		OrganizationEmail: body.Organization.Email,
		RecipientEmail:    body.Organization.Email,
		Subject:           fmt.Sprintf("%s %s report", subjectPrefix(body.Organization.Abbreviation, body.Organization.Name), label),
		Body:              html,
	}, nil
}

// Status renders a member's progress toward active status.
func (r *Renderer) Status(org organization.Organization, m member.Member, sem semester.Semester, ev membership.Evaluation) (Message, error) {
	html, err := r.execute(KindStatus, r.memberView(org, m, sem, ev))
	if err != nil {
		return Message{}, err
	}
	return Message{
		TemplateKind:      KindStatus,
		OrganizationEmail: org.Email,
		RecipientEmail:    m.Email,
		Subject:           fmt.Sprintf("%s Your membership status for %s", subjectPrefix(org.Abbreviation, org.Name), sem.Name),
		Body:              html,
	}, nil
}

func (r *Renderer) MembershipAchieved(org organization.Organization, m member.Member, sem semester.Semester, ev membership.Evaluation) (Message, error) {
	html, err := r.execute(KindMembershipAchieved, r.memberView(org, m, sem, ev))
	if err != nil {
		return Message{}, err
	}
	return Message{
		TemplateKind:      KindMembershipAchieved,
		OrganizationEmail: org.Email,
		RecipientEmail:    m.Email,
		Subject:           fmt.Sprintf("%s You are an active member!", subjectPrefix(org.Abbreviation, org.Name)),
		Body:              html,
	}, nil
}

func (r *Renderer) memberView(org organization.Organization, m member.Member, sem semester.Semester, ev membership.Evaluation) memberView {
	threshold := 0
	if org.MembershipType == organization.MembershipPoints {
		threshold = org.ActiveThreshold
	}
	return memberView{
		AppName:      r.appName,
		Organization: orgView{Name: org.Name, Email: org.Email},
		MemberName:   m.Name,
		SemesterName: sem.Name,
		Threshold:    threshold,
		Evaluation:   ev,
	}
}

func (r *Renderer) execute(kind Kind, data any) (string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("no template for %s", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.String(), nil
}

func periodLabel(p report.PeriodInfo) (Kind, string) {
	if p.Kind == report.PeriodSemester {
		return KindSemesterReport, p.SemesterName + " semester"
	}
	return KindAnnualReport, fmt.Sprintf("%d annual", p.Year)
}

func subjectPrefix(abbreviation, name string) string {
	if abbreviation != "" {
		return "[" + abbreviation + "]"
	}
	return "[" + name + "]"
}
