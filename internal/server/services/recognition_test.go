package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/bioguard/internal/server/storage"
)

type recognitionFixture struct {
	rm     *repotest.Manager
	people *PeopleService
	rec    *RecognitionService
	pub    *recordingPublisher
}

func newRecognitionFixture(t *testing.T) *recognitionFixture {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	pub := &recordingPublisher{}
	logs := NewAccessLogService(db, rm, pub, logging.Nop{})
	return &recognitionFixture{
		rm:     rm,
		people: NewPeopleService(db, rm, storage.NewMemoryStore(), logging.Nop{}),
		rec:    NewRecognitionService(db, rm, logs),
		pub:    pub,
	}
}

func TestRecognize(t *testing.T) {
	f := newRecognitionFixture(t)
	ctx := context.Background()

	friend, err := f.people.Create(ctx, CreatePersonInput{Name: "Friend", ListType: common.ListWhitelist, Photo: []byte("friend")})
	require.NoError(t, err)
	_, err = f.people.Create(ctx, CreatePersonInput{Name: "Foe", ListType: common.ListBlacklist, Photo: []byte("foe")})
	require.NoError(t, err)

	tests := []struct {
		name       string
		photo      string
		matched    bool
		action     string
		personName string
	}{
		{name: "whitelisted", photo: "friend", matched: true, action: common.ActionGranted, personName: "Friend"},
		{name: "blacklisted", photo: "foe", matched: true, action: common.ActionDenied, personName: "Foe"},
		{name: "stranger", photo: "stranger", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.rm.AccessLogsRepo.Len()

			r, err := f.rec.Recognize(ctx, []byte(tt.photo), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.matched, r.Matched)

			if !tt.matched {
				assert.Nil(t, r.Person)
				assert.Equal(t, before, f.rm.AccessLogsRepo.Len(), "no log for unmatched capture")
				return
			}
			assert.Equal(t, tt.action, r.Action)
			assert.Equal(t, tt.personName, r.Person.Name)
			assert.NotEmpty(t, r.LogID)
			assert.Equal(t, before+1, f.rm.AccessLogsRepo.Len())
		})
	}

	assert.Equal(t, friend.ID, f.pub.events[0].Log.PersonID)
}

func TestRecognize_EmptyPhoto(t *testing.T) {
	f := newRecognitionFixture(t)
	_, err := f.rec.Recognize(context.Background(), nil, "u1")
	assert.ErrorIs(t, err, common.ErrorPhotoMissing)
}

func TestRecognize_RepoError(t *testing.T) {
	f := newRecognitionFixture(t)
	f.rm.PeopleRepo.Err = errBoom{}
	_, err := f.rec.Recognize(context.Background(), []byte("x"), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
