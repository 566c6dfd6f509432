package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/models"
)

func TestNormalizeResourceURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:5000/uploads/a.mp4": "/uploads/a.mp4",
		"https://cdn.example.com/x/y.pdf?v=2": "/x/y.pdf",
		"https://cdn.example.com":             "/",
		"HTTP://localhost:5000/uploads/a.mp4": "/uploads/a.mp4",
		"Https://cdn.example.com/x/y.pdf":     "/x/y.pdf",
		"/uploads/a.mp4":                      "/uploads/a.mp4",
		"uploads/a.mp4":                       "uploads/a.mp4",
		"ftp://host/file.pdf":                 "ftp://host/file.pdf",
		"http://[::1":                         "http://[::1",
		"":                                    "",
	}

	for input, expected := range cases {
		require.Equal(t, expected, NormalizeResourceURL(input), input)
		require.Equal(t, expected, NormalizeResourceURL(NormalizeResourceURL(input)), "normalisation must be idempotent for %q", input)
	}

	require.Equal(t, NormalizeResourceURL("http://host/uploads/a.mp4"), NormalizeResourceURL("/uploads/a.mp4"))
}

func TestResourceKeyUsesNormalizedURL(t *testing.T) {
	require.Equal(t, "7::video::/uploads/a.mp4", ResourceKey(7, models.ResourceTypeVideo, "https://host/uploads/a.mp4"))
	require.NotEqual(t, ResourceKey(7, models.ResourceTypeVideo, "/a"), ResourceKey(7, models.ResourceTypePDF, "/a"))
}

func TestResolveSubjectIDs(t *testing.T) {
	classA := models.Class{ID: 1, Subjects: []models.Subject{{ID: 10}, {ID: 11}}}
	classB := models.Class{ID: 2, Subjects: []models.Subject{{ID: 20}}}

	t.Run("all class subjects without explicit enrollment", func(t *testing.T) {
		ids := ResolveSubjectIDs(models.Student{EnrolledClasses: []models.Class{classA, classB}})
		require.Len(t, ids, 3)
		require.Contains(t, ids, uint(20))
	})

	t.Run("explicit subjects filter classes and are unioned", func(t *testing.T) {
		ids := ResolveSubjectIDs(models.Student{
			EnrolledClasses:  []models.Class{classA, classB},
			EnrolledSubjects: []models.Subject{{ID: 11}, {ID: 99}},
		})
		require.Len(t, ids, 2)
		require.Contains(t, ids, uint(11))
		require.Contains(t, ids, uint(99))
		require.NotContains(t, ids, uint(10))
	})

	t.Run("no enrollment", func(t *testing.T) {
		require.Empty(t, ResolveSubjectIDs(models.Student{}))
	})
}

func TestBuildCurriculumDeduplicatesAndCountsQuizSlots(t *testing.T) {
	unit := models.Unit{
		ID:        1,
		SubjectID: 5,
		Videos:    resources("http://host/v1.mp4", "/v1.mp4", "/v2.mp4"),
		PDFs:      resources("/p.pdf"),
	}
	quizzes := []models.Quiz{
		{ID: 1, UnitID: 1, Enabled: false},
		{ID: 2, UnitID: 1, Enabled: true},
		{ID: 3, UnitID: 404},
	}

	curriculum := BuildCurriculum([]models.Unit{unit, unit}, quizzes)
	require.Len(t, curriculum.Units, 1)
	require.Len(t, curriculum.ResourceKeys, 3)
	require.Len(t, curriculum.QuizUnits, 1)
	require.Equal(t, 4, curriculum.TotalItems())
	require.Equal(t, []uint{1}, curriculum.UnitIDs())
}

func TestComputeProgress(t *testing.T) {
	unit := models.Unit{ID: 1, SubjectID: 1, Videos: resources("/v1.mp4", "/v2.mp4"), PDFs: resources("/p.pdf")}

	t.Run("zero total yields zero percent", func(t *testing.T) {
		result := ComputeProgress(ReduceLedger(
			[]models.ResourceProgress{{UnitID: 9, ResourceType: models.ResourceTypeVideo, ResourceURL: "/stale.mp4"}},
			nil,
		), BuildCurriculum(nil, nil))
		require.Equal(t, 0, result.TotalItems)
		require.Equal(t, 0, result.CompletedItems)
		require.Equal(t, 0, result.OverallPercent)
	})

	t.Run("two of three resources rounds to 67", func(t *testing.T) {
		ledger := ReduceLedger([]models.ResourceProgress{
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/v1.mp4"},
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "http://host/v2.mp4"},
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/v2.mp4"},
		}, nil)
		result := ComputeProgress(ledger, BuildCurriculum([]models.Unit{unit}, nil))
		require.Equal(t, 3, result.TotalItems)
		require.Equal(t, 2, result.CompletedItems)
		require.Equal(t, 67, result.OverallPercent)
	})

	t.Run("disabled quiz counts toward the total", func(t *testing.T) {
		ledger := ReduceLedger([]models.ResourceProgress{
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/v1.mp4"},
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/v2.mp4"},
		}, []models.QuizProgress{{QuizID: 8}, {QuizID: 8}})
		result := ComputeProgress(ledger, BuildCurriculum([]models.Unit{unit}, []models.Quiz{{ID: 8, UnitID: 1, Enabled: false}}))
		require.Equal(t, 4, result.TotalItems)
		require.Equal(t, 3, result.CompletedItems)
		require.Equal(t, 75, result.OverallPercent)
	})

	t.Run("stale ledger entries are clamped", func(t *testing.T) {
		ledger := ReduceLedger([]models.ResourceProgress{
			{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/v1.mp4"},
			{UnitID: 50, ResourceType: models.ResourceTypeVideo, ResourceURL: "/gone-1.mp4"},
			{UnitID: 50, ResourceType: models.ResourceTypeVideo, ResourceURL: "/gone-2.mp4"},
			{UnitID: 50, ResourceType: models.ResourceTypePDF, ResourceURL: "/gone.pdf"},
		}, []models.QuizProgress{{QuizID: 77}})
		result := ComputeProgress(ledger, BuildCurriculum([]models.Unit{unit}, nil))
		require.Equal(t, 3, result.TotalItems)
		require.Equal(t, 3, result.CompletedItems)
		require.Equal(t, 100, result.OverallPercent)
	})
}

func TestBuildProgressTreeStatuses(t *testing.T) {
	subjectDone := models.Subject{ID: 1, ClassID: 1, Name: "Done"}
	subjectEmpty := models.Subject{ID: 2, ClassID: 1, Name: "Empty"}
	subjectPartial := models.Subject{ID: 3, ClassID: 1, Name: "Partial"}
	class := models.Class{ID: 1, Name: "C1", Subjects: []models.Subject{subjectPartial, subjectDone, subjectEmpty}}
	student := models.Student{EnrolledClasses: []models.Class{class}}

	units := []models.Unit{
		{ID: 1, SubjectID: 1, Title: "Finished", Videos: resources("/a.mp4")},
		{ID: 2, SubjectID: 3, Title: "Halfway", Videos: resources("/b.mp4"), PDFs: resources("/b.pdf")},
		{ID: 3, SubjectID: 3, Title: "Untouched", Videos: resources("/c.mp4")},
	}
	quizzes := []models.Quiz{{ID: 5, UnitID: 1}}
	ledger := ReduceLedger([]models.ResourceProgress{
		{UnitID: 1, ResourceType: models.ResourceTypeVideo, ResourceURL: "/a.mp4"},
		{UnitID: 2, ResourceType: models.ResourceTypePDF, ResourceURL: "http://host/b.pdf"},
	}, []models.QuizProgress{{QuizID: 5}})

	subjectIDs := ResolveSubjectIDs(student)
	tree := BuildProgressTree(student, subjectIDs, BuildCurriculum(units, quizzes), ledger)

	require.Len(t, tree.Classes, 1)
	classNode := tree.Classes[0]
	require.Equal(t, StatusStarted, classNode.Status)
	require.Len(t, classNode.Subjects, 3)

	done := classNode.Subjects[0]
	require.Equal(t, uint(1), done.ID)
	require.Equal(t, StatusCompleted, done.Status)
	require.True(t, done.Units[0].HasQuiz)
	require.Equal(t, StatusCompleted, done.Units[0].QuizStatus)

	empty := classNode.Subjects[1]
	require.Equal(t, StatusNotApplicable, empty.Status)
	require.Zero(t, empty.UnitCount)

	partial := classNode.Subjects[2]
	require.Equal(t, StatusStarted, partial.Status)
	require.Equal(t, 2, partial.UnitCount)
	require.Equal(t, StatusStarted, partial.Units[0].Status)
	require.Equal(t, StatusNotApplicable, partial.Units[0].QuizStatus)
	require.Equal(t, StatusCompleted, partial.Units[0].PDFs[0].Status)
	require.Equal(t, StatusNotStarted, partial.Units[1].Status)
}

func TestBuildProgressTreeFiltersByExplicitSubjects(t *testing.T) {
	class := models.Class{ID: 1, Name: "C1", Subjects: []models.Subject{{ID: 1, Name: "Kept"}, {ID: 2, Name: "Dropped"}}}
	student := models.Student{EnrolledClasses: []models.Class{class}, EnrolledSubjects: []models.Subject{{ID: 1}}}

	tree := BuildProgressTree(student, ResolveSubjectIDs(student), BuildCurriculum(nil, nil), Ledger{})
	require.Len(t, tree.Classes[0].Subjects, 1)
	require.Equal(t, "Kept", tree.Classes[0].Subjects[0].Name)
	require.Equal(t, StatusNotApplicable, tree.Classes[0].Status)
}

func TestRollupStatusIgnoresNotApplicable(t *testing.T) {
	require.Equal(t, StatusNotApplicable, rollupStatus(nil))
	require.Equal(t, StatusNotApplicable, rollupStatus([]string{StatusNotApplicable}))
	require.Equal(t, StatusCompleted, rollupStatus([]string{StatusNotApplicable, StatusCompleted}))
	require.Equal(t, StatusStarted, rollupStatus([]string{StatusCompleted, StatusNotStarted}))
	require.Equal(t, StatusStarted, rollupStatus([]string{StatusStarted, StatusNotApplicable}))
	require.Equal(t, StatusNotStarted, rollupStatus([]string{StatusNotStarted, StatusNotApplicable}))
}
