package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareBaseURLComesFromCaller(t *testing.T) {
	svc := NewProfileService(nil, nil, nil, nil, "https://staging.nawhoknow.app", time.UTC).(*profileService)
	assert.Equal(t, "https://staging.nawhoknow.app", svc.baseURL)

	svc = NewProfileService(nil, nil, nil, nil, "", time.UTC).(*profileService)
	assert.Equal(t, "https://nawhoknow.app", svc.baseURL)
}
