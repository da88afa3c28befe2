package engine

// RoundScore returns the points a seat earns for the round: an exact bid is
// worth bid+10 (a made zero bid is worth a flat 10); any miss is worth 0.
func RoundScore(bid, tricksWon int) int {
	if bid != tricksWon {
		return 0
	}
	if bid == 0 {
		return 10
	}
	return bid + 10
}

// scoreRound applies round scoring in place, clears the final trick and
// moves to roundEnd. Called only by AdvanceAfterTrick once
// TrickNumber == CardsPerPlayer.
func scoreRound(g *GameState) {
	for i := range g.Players {
		g.Players[i].Score += RoundScore(g.Players[i].Bid, g.Players[i].TricksWon)
	}
	g.PlayedCards = []PlayedCard{}
	g.LeadingSuit = nil
	g.Phase = PhaseRoundEnd
}
