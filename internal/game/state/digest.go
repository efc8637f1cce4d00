package state

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Digest computes a deterministic checksum of the game state. Instance ids are
// left out, so two games built from the same setup and seed digest equal.
func (g *Game) Digest() string {
	sum := sha256.Sum256([]byte(g.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical renders the state as text. Pile order matters and is kept; only
// per-turn collections without meaningful order are sorted.
func (g *Game) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%d|%s\n", g.Year.ID, g.Phase, g.Turn, g.Current, g.outcome)
	fmt.Fprintf(&buf, "LOCATION:%s|%d/%d\n", g.Location.Card.ID, g.Location.Marks.Count, g.Location.Marks.Max)

	for _, p := range g.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%d/%d|%d|%d|%t|%d|%d\n",
			p.Index,
			p.Hero.ID,
			p.Life,
			p.MaxLife,
			p.Influence,
			p.Attack,
			p.Stunned,
			p.SpellsPlayed,
			p.ItemsPlayed,
		)
		fmt.Fprintf(&buf, "  DECK:%s\n", strings.Join(p.Deck.IDs(), ","))
		fmt.Fprintf(&buf, "  HAND:%s\n", strings.Join(p.Hand.IDs(), ","))
		fmt.Fprintf(&buf, "  DISCARD:%s\n", strings.Join(p.Discard.IDs(), ","))

		allies := make([]string, len(p.AlliesPlayed))
		for i, c := range p.AlliesPlayed {
			allies[i] = c.Card.ID
		}
		sort.Strings(allies)
		fmt.Fprintf(&buf, "  ALLIES:%s\n", strings.Join(allies, ","))

		restrictions := make([]string, 0, len(p.restrictions))
		for kind, d := range p.restrictions {
			restrictions = append(restrictions, fmt.Sprintf("%s=%s", kind, d))
		}
		sort.Strings(restrictions)
		fmt.Fprintf(&buf, "  RESTRICTIONS:%s\n", strings.Join(restrictions, ","))
	}

	buf.WriteString("MARKET:")
	for i, c := range g.Market.slots {
		if i > 0 {
			buf.WriteString(",")
		}
		if c != nil {
			buf.WriteString(c.Card.ID)
		}
	}
	fmt.Fprintf(&buf, "\nSHOP:%s\n", strings.Join(g.Market.shop.IDs(), ","))

	for _, v := range g.Villains {
		fmt.Fprintf(&buf, "VILLAIN:%s|%d/%d|%d@%d\n", v.Card.ID, v.Damage.Count, v.Life(), v.BlockedFor, v.BlockedOn)
	}
	fmt.Fprintf(&buf, "VILLAIN_DECK:%s\n", strings.Join(g.VillainDeck.IDs(), ","))
	fmt.Fprintf(&buf, "DARK_ARTS:%s\n", strings.Join(g.DarkArtsDeck.IDs(), ","))
	fmt.Fprintf(&buf, "DARK_ARTS_DISCARD:%s\n", strings.Join(g.DarkArtsDiscard.IDs(), ","))

	horcruxes := make([]string, len(g.Horcruxes))
	for i, h := range g.Horcruxes {
		horcruxes[i] = h.Card.ID
	}
	fmt.Fprintf(&buf, "HORCRUXES:%s\n", strings.Join(horcruxes, ","))

	return buf.String()
}
