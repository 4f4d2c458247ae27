package elo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedEqualRatings(t *testing.T) {
	e := Expected(1500, 1500)
	assert.InDelta(t, 0.5, e, 1e-9, "Equal ratings should give a 50% expectation")
}

func TestExpectedFavorsHigherRating(t *testing.T) {
	e := Expected(1600, 1400)
	assert.InDelta(t, 0.7597, e, 1e-4, "A 200-point edge should give roughly 76%")

	// The two perspectives must always sum to 1
	assert.InDelta(t, 1.0, Expected(1600, 1400)+Expected(1400, 1600), 1e-9)
}

func TestKFactorTiers(t *testing.T) {
	assert.Equal(t, KChampionship, KFactor("Canada Open Championship"), "Championship events use the top tier")
	assert.Equal(t, KChampionship, KFactor("Championnat provincial"), "French championship names match too")
	assert.Equal(t, KNational, KFactor("Senior National Cup"))
	assert.Equal(t, KNational, KFactor("Canadian Junior Open"))
	assert.Equal(t, KNational, KFactor("Jeux Nationaux d'hiver"))
	assert.Equal(t, KProvincial, KFactor("ABC Provincial Qualifier"))
	assert.Equal(t, KProvincial, KFactor(""), "Unknown tournaments default to the provincial tier")
}

func TestKFactorCaseInsensitive(t *testing.T) {
	assert.Equal(t, KChampionship, KFactor("YONEX WORLD CHAMPIONSHIP"))
	assert.Equal(t, KNational, KFactor("canadian masters"))
}
