package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
)

func sampleCatalog() []*models.Course {
	return []*models.Course{
		models.NewCourse(101, "Intro", nil, 2),
		models.NewCourse(201, "Advanced", []int{101}, 5),
		models.NewCourse(42, "How To Train Your Dragon", []int{201, 101}, 25),
	}
}

func TestCourseRepositoryLoad(t *testing.T) {
	repo := NewCourseRepository()
	assert.False(t, repo.Loaded())

	require.NoError(t, repo.Load(sampleCatalog()))
	assert.True(t, repo.Loaded())
	assert.Equal(t, 3, repo.Len())

	c, ok := repo.Get(42)
	require.True(t, ok)
	assert.Equal(t, "How To Train Your Dragon", c.Name)
	assert.Equal(t, []int{201, 101}, repo.PrerequisitesOf(42))
	assert.Equal(t, []int{}, repo.PrerequisitesOf(101))
	assert.Equal(t, 25, repo.Capacity(42))
	assert.Equal(t, 2, repo.Position(42))
	assert.Equal(t, -1, repo.Position(999))

	ids := []int{}
	for _, c := range repo.All() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{101, 201, 42}, ids)

	_, ok = repo.Get(999)
	assert.False(t, ok)
	assert.Equal(t, []int{}, repo.PrerequisitesOf(999))
	assert.Equal(t, []string{}, repo.Roster(999))
	assert.Equal(t, 0, repo.Capacity(999))
}

func TestCourseRepositoryLoadIsAllOrNothing(t *testing.T) {
	cases := map[string][]*models.Course{
		"duplicate id": {
			models.NewCourse(1, "A", nil, 1),
			models.NewCourse(1, "B", nil, 1),
		},
		"nil record": {models.NewCourse(1, "A", nil, 1), nil},
	}

	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			repo := NewCourseRepository()
			require.NoError(t, repo.Load(sampleCatalog()))

			err := repo.Load(bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrCatalogInvalid)

			assert.Equal(t, 3, repo.Len(), "previous catalog must survive a failed load")
			_, ok := repo.Get(101)
			assert.True(t, ok)
		})
	}
}

func TestCourseRepositoryLoadAcceptsClosedAndSelfRequiringCourses(t *testing.T) {
	repo := NewCourseRepository()
	require.NoError(t, repo.Load([]*models.Course{
		models.NewCourse(101, "Intro", nil, 2),
		models.NewCourse(102, "Closed", nil, 0),
		models.NewCourse(103, "Ouroboros", []int{103}, 4),
	}))

	assert.Equal(t, 3, repo.Len())
	closed, ok := repo.Get(102)
	require.True(t, ok)
	assert.True(t, closed.Full())
	assert.Equal(t, 0, closed.SeatsAvailable())
	assert.Equal(t, []int{103}, repo.PrerequisitesOf(103))
}

func TestCourseRepositoryLoadDoesNotAliasInput(t *testing.T) {
	input := sampleCatalog()
	repo := NewCourseRepository()
	require.NoError(t, repo.Load(input))

	input[1].Prerequisites[0] = 999
	assert.Equal(t, []int{101}, repo.PrerequisitesOf(201))

	prereqs := repo.PrerequisitesOf(201)
	prereqs[0] = 7
	assert.Equal(t, []int{101}, repo.PrerequisitesOf(201))
}

func TestCourseRoster(t *testing.T) {
	repo := NewCourseRepository()
	require.NoError(t, repo.Load(sampleCatalog()))

	c, _ := repo.Get(101)
	c.AddStudent("carol")
	c.AddStudent("alice")
	assert.Equal(t, []string{"alice", "carol"}, repo.Roster(101))
	assert.True(t, c.Full())
	assert.Equal(t, 0, c.SeatsAvailable())

	c.RemoveStudent("carol")
	assert.False(t, c.Full())
	assert.Equal(t, 1, c.SeatsAvailable())
}
