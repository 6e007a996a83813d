package domain

type RelationType string

const (
	RelationFollows RelationType = "follows"
	RelationRelates RelationType = "relates"
	RelationBlocks  RelationType = "blocks"
)

// ValidRelationTypes is the canonical set of accepted relation type strings.
var ValidRelationTypes = map[string]bool{
	"follows": true, "relates": true, "blocks": true,
}
