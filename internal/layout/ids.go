package layout

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dbitech/cardtimeline/internal/model"
)

var (
	anchorSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dbitech/cardtimeline/anchor"))
	cardSpace   = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dbitech/cardtimeline/card"))
)

// anchorID derives a stable id from the anchor's membership so that the
// same group of events keeps its id across passes.
func anchorID(members []model.Event) string {
	return uuid.NewSHA1(anchorSpace, []byte(joinIDs(members))).String()
}

func cardID(tier model.Tier, members []model.Event) string {
	return uuid.NewSHA1(cardSpace, []byte(tier.String()+"\x00"+joinIDs(members))).String()
}

func joinIDs(members []model.Event) string {
	var b strings.Builder
	for i, m := range members {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(m.ID)
	}
	return b.String()
}
