package service

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
)

// Tree node statuses.
const (
	StatusNotApplicable = "not-applicable"
	StatusNotStarted    = "not-started"
	StatusStarted       = "started"
	StatusCompleted     = "completed"
)

// NormalizeResourceURL reduces absolute http(s) URLs to their path so that a resource logged
// through an absolute link and through a relative one map to the same key. Any other input,
// including unparsable URLs, is returned unchanged.
func NormalizeResourceURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if scheme := strings.ToLower(parsed.Scheme); scheme != "http" && scheme != "https" {
		return raw
	}

	path := parsed.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// ResourceKey builds the identity used to match ledger entries against the curriculum.
func ResourceKey(unitID uint, resourceType, resourceURL string) string {
	return fmt.Sprintf("%d::%s::%s", unitID, resourceType, NormalizeResourceURL(resourceURL))
}

// ResolveSubjectIDs returns the subjects whose units count towards a student's progress.
// When explicit subject enrollments exist they narrow the subjects of enrolled classes and are
// always included themselves.
func ResolveSubjectIDs(student models.Student) map[uint]struct{} {
	explicit := make(map[uint]struct{}, len(student.EnrolledSubjects))
	for _, subject := range student.EnrolledSubjects {
		explicit[subject.ID] = struct{}{}
	}

	resolved := make(map[uint]struct{})
	for _, class := range student.EnrolledClasses {
		for _, subject := range class.Subjects {
			if len(explicit) == 0 {
				resolved[subject.ID] = struct{}{}
				continue
			}
			if _, ok := explicit[subject.ID]; ok {
				resolved[subject.ID] = struct{}{}
			}
		}
	}
	for id := range explicit {
		resolved[id] = struct{}{}
	}

	return resolved
}

// Curriculum is the deduplicated set of countable items behind a student's subjects.
type Curriculum struct {
	Units        []models.Unit
	ResourceKeys map[string]struct{}
	QuizUnits    map[uint]struct{}

	unitsBySubject map[uint][]models.Unit
	quizzesByUnit  map[uint][]uint
}

// BuildCurriculum indexes units and quizzes. Each unit with at least one quiz contributes a
// single quiz slot whether or not its quizzes are enabled.
func BuildCurriculum(units []models.Unit, quizzes []models.Quiz) Curriculum {
	curriculum := Curriculum{
		Units:          make([]models.Unit, 0, len(units)),
		ResourceKeys:   make(map[string]struct{}),
		QuizUnits:      make(map[uint]struct{}),
		unitsBySubject: make(map[uint][]models.Unit),
		quizzesByUnit:  make(map[uint][]uint),
	}

	seen := make(map[uint]struct{}, len(units))
	for _, unit := range units {
		if _, dup := seen[unit.ID]; dup {
			continue
		}
		seen[unit.ID] = struct{}{}

		curriculum.Units = append(curriculum.Units, unit)
		curriculum.unitsBySubject[unit.SubjectID] = append(curriculum.unitsBySubject[unit.SubjectID], unit)

		for _, video := range unit.Videos {
			curriculum.ResourceKeys[ResourceKey(unit.ID, models.ResourceTypeVideo, video.URL)] = struct{}{}
		}
		for _, pdf := range unit.PDFs {
			curriculum.ResourceKeys[ResourceKey(unit.ID, models.ResourceTypePDF, pdf.URL)] = struct{}{}
		}
	}

	for _, quiz := range quizzes {
		if _, ok := seen[quiz.UnitID]; !ok {
			continue
		}
		curriculum.QuizUnits[quiz.UnitID] = struct{}{}
		curriculum.quizzesByUnit[quiz.UnitID] = append(curriculum.quizzesByUnit[quiz.UnitID], quiz.ID)
	}

	for subjectID := range curriculum.unitsBySubject {
		units := curriculum.unitsBySubject[subjectID]
		sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	}

	return curriculum
}

// TotalItems is the number of distinct resources plus one slot per unit with a quiz.
func (c Curriculum) TotalItems() int {
	return len(c.ResourceKeys) + len(c.QuizUnits)
}

// UnitIDs lists the ids of every unit in the curriculum.
func (c Curriculum) UnitIDs() []uint {
	ids := make([]uint, 0, len(c.Units))
	for _, unit := range c.Units {
		ids = append(ids, unit.ID)
	}
	return ids
}

// Ledger is a student's completion log reduced to sets.
type Ledger struct {
	CompletedResources map[string]struct{}
	CompletedQuizzes   map[uint]struct{}
}

// ReduceLedger collapses duplicate ledger rows into key sets.
func ReduceLedger(resources []models.ResourceProgress, quizzes []models.QuizProgress) Ledger {
	ledger := Ledger{
		CompletedResources: make(map[string]struct{}, len(resources)),
		CompletedQuizzes:   make(map[uint]struct{}, len(quizzes)),
	}
	for _, entry := range resources {
		ledger.CompletedResources[ResourceKey(entry.UnitID, entry.ResourceType, entry.ResourceURL)] = struct{}{}
	}
	for _, entry := range quizzes {
		ledger.CompletedQuizzes[entry.QuizID] = struct{}{}
	}
	return ledger
}

// ComputeProgress derives the flat completion summary. Ledger entries that no longer match the
// curriculum still count and are absorbed by the clamp to the total.
func ComputeProgress(ledger Ledger, curriculum Curriculum) dto.AggregatedProgressResponse {
	total := curriculum.TotalItems()
	completed := len(ledger.CompletedResources) + len(ledger.CompletedQuizzes)
	if completed > total {
		completed = total
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(completed) / float64(total)))
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return dto.AggregatedProgressResponse{
		OverallPercent: percent,
		TotalItems:     total,
		CompletedItems: completed,
	}
}

// BuildProgressTree renders the per-class status tree over the student's enrolled classes.
func BuildProgressTree(student models.Student, subjectIDs map[uint]struct{}, curriculum Curriculum, ledger Ledger) dto.DetailedProgressResponse {
	classes := append([]models.Class(nil), student.EnrolledClasses...)
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })

	response := dto.DetailedProgressResponse{Classes: make([]dto.ClassStatusNode, 0, len(classes))}
	for _, class := range classes {
		subjects := append([]models.Subject(nil), class.Subjects...)
		sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })

		classNode := dto.ClassStatusNode{ID: class.ID, Name: class.Name, Subjects: make([]dto.SubjectStatusNode, 0, len(subjects))}
		subjectStatuses := make([]string, 0, len(subjects))
		for _, subject := range subjects {
			if _, ok := subjectIDs[subject.ID]; !ok {
				continue
			}
			node := buildSubjectNode(subject, curriculum, ledger)
			classNode.Subjects = append(classNode.Subjects, node)
			subjectStatuses = append(subjectStatuses, node.Status)
		}
		classNode.Status = rollupStatus(subjectStatuses)
		response.Classes = append(response.Classes, classNode)
	}

	return response
}

func buildSubjectNode(subject models.Subject, curriculum Curriculum, ledger Ledger) dto.SubjectStatusNode {
	units := curriculum.unitsBySubject[subject.ID]
	node := dto.SubjectStatusNode{
		ID:        subject.ID,
		Name:      subject.Name,
		UnitCount: len(units),
		Units:     make([]dto.UnitStatusNode, 0, len(units)),
	}

	statuses := make([]string, 0, len(units))
	for _, unit := range units {
		unitNode := buildUnitNode(unit, curriculum, ledger)
		node.Units = append(node.Units, unitNode)
		statuses = append(statuses, unitNode.Status)
	}
	node.Status = rollupStatus(statuses)

	return node
}

func buildUnitNode(unit models.Unit, curriculum Curriculum, ledger Ledger) dto.UnitStatusNode {
	node := dto.UnitStatusNode{
		ID:     unit.ID,
		Title:  unit.Title,
		Videos: resourceNodes(unit.ID, models.ResourceTypeVideo, unit.Videos, ledger),
		PDFs:   resourceNodes(unit.ID, models.ResourceTypePDF, unit.PDFs, ledger),
	}

	total := len(node.Videos) + len(node.PDFs)
	done := 0
	for _, resource := range append(append([]dto.ResourceStatusNode(nil), node.Videos...), node.PDFs...) {
		if resource.Status == StatusCompleted {
			done++
		}
	}

	node.QuizStatus = StatusNotApplicable
	if quizIDs := curriculum.quizzesByUnit[unit.ID]; len(quizIDs) > 0 {
		node.HasQuiz = true
		node.QuizStatus = StatusNotStarted
		total++
		for _, quizID := range quizIDs {
			if _, ok := ledger.CompletedQuizzes[quizID]; ok {
				node.QuizStatus = StatusCompleted
				done++
				break
			}
		}
	}

	switch {
	case total == 0:
		node.Status = StatusNotApplicable
	case done == 0:
		node.Status = StatusNotStarted
	case done >= total:
		node.Status = StatusCompleted
	default:
		node.Status = StatusStarted
	}

	return node
}

func resourceNodes(unitID uint, resourceType string, resources []models.UnitResource, ledger Ledger) []dto.ResourceStatusNode {
	nodes := make([]dto.ResourceStatusNode, 0, len(resources))
	for _, resource := range resources {
		status := StatusNotStarted
		if _, ok := ledger.CompletedResources[ResourceKey(unitID, resourceType, resource.URL)]; ok {
			status = StatusCompleted
		}
		nodes = append(nodes, dto.ResourceStatusNode{
			Type:   resourceType,
			URL:    resource.URL,
			Name:   resource.Name,
			Status: status,
		})
	}
	return nodes
}

// rollupStatus folds child statuses, skipping children with nothing to complete.
func rollupStatus(children []string) string {
	applicable, completed := 0, 0
	touched := false
	for _, status := range children {
		switch status {
		case StatusNotApplicable:
			continue
		case StatusCompleted:
			completed++
			touched = true
		case StatusStarted:
			touched = true
		}
		applicable++
	}

	switch {
	case applicable == 0:
		return StatusNotApplicable
	case completed == applicable:
		return StatusCompleted
	case touched:
		return StatusStarted
	default:
		return StatusNotStarted
	}
}
