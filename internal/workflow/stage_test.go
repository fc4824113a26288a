package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    Stage
		trigger Trigger
		want    Stage
		ok      bool
	}{
		{StageCollectingURLs, TriggerAdvance, StageCollectingFiles, true},
		{StageCollectingURLs, TriggerBack, StageCollectingURLs, false},
		{StageCollectingURLs, TriggerAddFiles, StageCollectingURLs, false},
		{StageCollectingURLs, TriggerSubmit, StageCollectingURLs, false},
		{StageCollectingFiles, TriggerAdvance, StageCollectingProjectType, true},
		{StageCollectingFiles, TriggerBack, StageCollectingURLs, true},
		{StageCollectingFiles, TriggerAddFiles, StageCollectingFiles, true},
		{StageCollectingFiles, TriggerRemoveFile, StageCollectingFiles, true},
		{StageCollectingFiles, TriggerSubmit, StageCollectingFiles, false},
		{StageCollectingProjectType, TriggerAdvance, StageCollectingProjectType, false},
		{StageCollectingProjectType, TriggerBack, StageCollectingFiles, true},
		{StageCollectingProjectType, TriggerSubmit, StageCollectingProjectType, true},
		{StageCollectingProjectType, TriggerSubmitFailed, StageCollectingProjectType, true},
		{StageCollectingProjectType, TriggerSubmitSucceeded, StageShowingResult, true},
		{StageCollectingProjectType, TriggerAddFiles, StageCollectingProjectType, false},
		{StageShowingResult, TriggerAdvance, StageShowingResult, false},
		{StageShowingResult, TriggerBack, StageShowingResult, false},
		{StageShowingResult, TriggerSubmit, StageShowingResult, false},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.trigger)
		if c.ok {
			require.NoError(t, err, "%s/%s", c.from, c.trigger)
		} else {
			require.ErrorIs(t, err, ErrInvalidTransition, "%s/%s", c.from, c.trigger)
		}
		assert.Equal(t, c.want, got, "%s/%s", c.from, c.trigger)
	}
}

func TestStageStrings(t *testing.T) {
	assert.Equal(t, "CollectingUrls", StageCollectingURLs.String())
	assert.Equal(t, "ShowingResult", StageShowingResult.String())
	assert.Equal(t, "Stage(9)", Stage(9).String())
	assert.Equal(t, "Upload Files", StageCollectingFiles.Label())
	assert.Equal(t, "submit", TriggerSubmit.String())
}
