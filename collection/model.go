// Package collection defines the immutable recipe/profile data model loaded
// from a collection file. Parsing the on-disk format is an external
// collaborator's job; this package only
// defines the loaded shape and the invariants the loader must satisfy.
package collection

import (
	"fmt"

	"github.com/ferro-labs/slumberlib/template"
)

// ProfileID uniquely identifies a Profile within a Collection.
type ProfileID string

// RecipeID uniquely identifies a Recipe within a Collection.
type RecipeID string

// Method is an HTTP request method restricted to the set a Recipe may use.
type Method string

// The HTTP methods a Recipe may specify.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

func validMethod(m Method) bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions, MethodTrace:
		return true
	default:
		return false
	}
}

// Profile is a named set of template-valued variables consulted during
// field resolution.
type Profile struct {
	ID      ProfileID
	Name    string
	Default bool
	Data    *OrderedTemplates
}

// Recipe is a parameterised HTTP request definition.
type Recipe struct {
	ID             RecipeID
	Name           string
	Method         Method
	URL            template.Template
	Body           RecipeBody
	Authentication *Authentication
	Query          *OrderedQueryValues
	Headers        *OrderedTemplates
	Persist        bool
}

// RecipeBodyKind identifies which variant a RecipeBody holds.
type RecipeBodyKind int

const (
	// BodyNone means the recipe sends no body.
	BodyNone RecipeBodyKind = iota
	// BodyRaw is an opaque template rendered to bytes.
	BodyRaw
	// BodyJSON is a JSON template whose string leaves are rendered.
	BodyJSON
	// BodyFormURLEncoded is a flat key/template map, URL-encoded and joined.
	BodyFormURLEncoded
	// BodyFormMultipart is a flat key/template map sent as multipart form
	// data.
	BodyFormMultipart
)

// RecipeBody is the tagged union of request body shapes a Recipe may use.
type RecipeBody struct {
	Kind       RecipeBodyKind
	Raw        template.Template
	JSON       JSONTemplate
	FormFields *OrderedTemplates
}

// AuthKind identifies which variant an Authentication holds.
type AuthKind int

const (
	// AuthBasic is HTTP Basic authentication: Authorization: Basic
	// base64(user:pass).
	AuthBasic AuthKind = iota
	// AuthBearer is bearer-token authentication: Authorization: Bearer
	// <token>.
	AuthBearer
)

// Authentication is the tagged union of supported auth schemes. Username
// and Password are used for AuthBasic; Token is used for AuthBearer.
type Authentication struct {
	Kind     AuthKind
	Username template.Template
	Password template.Template
	Token    template.Template
}

// RecipeNodeKind identifies whether a RecipeTree node is a Folder or a leaf
// Recipe.
type RecipeNodeKind int

const (
	NodeFolder RecipeNodeKind = iota
	NodeRecipe
)

// RecipeNode is one entry in a RecipeTree: either a recursive Folder or a
// leaf Recipe.
type RecipeNode struct {
	Kind     RecipeNodeKind
	Recipe   *Recipe
	Children *RecipeTree
}

// RecipeTree is an ordered map of RecipeID to RecipeNode, mirroring the
// order recipes were declared in the collection file.
type RecipeTree struct {
	order []RecipeID
	nodes map[RecipeID]RecipeNode
}

// NewRecipeTree creates an empty RecipeTree.
func NewRecipeTree() *RecipeTree {
	return &RecipeTree{nodes: make(map[RecipeID]RecipeNode)}
}

// Insert adds a node under id, preserving insertion order.
func (t *RecipeTree) Insert(id RecipeID, node RecipeNode) {
	if _, exists := t.nodes[id]; !exists {
		t.order = append(t.order, id)
	}
	t.nodes[id] = node
}

// Get looks up a node by id directly under this tree (non-recursive).
func (t *RecipeTree) Get(id RecipeID) (RecipeNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Order returns recipe ids in declaration order.
func (t *RecipeTree) Order() []RecipeID { return t.order }

// FindRecipe searches the tree recursively for a leaf Recipe by id.
func (t *RecipeTree) FindRecipe(id RecipeID) (*Recipe, bool) {
	if t == nil {
		return nil, false
	}
	if node, ok := t.nodes[id]; ok && node.Kind == NodeRecipe {
		return node.Recipe, true
	}
	for _, childID := range t.order {
		node := t.nodes[childID]
		if node.Kind == NodeFolder {
			if r, ok := node.Children.FindRecipe(id); ok {
				return r, true
			}
		}
	}
	return nil, false
}

// Collection is the immutable tree of profiles and recipes loaded once per
// reload. At most one profile may carry Default=true; this is enforced by
// Validate, which every loader must call before handing a Collection to the
// rest of the system.
type Collection struct {
	Profiles map[ProfileID]*Profile
	Recipes  *RecipeTree
	// Root is the directory the collection file was loaded from. The
	// file() template function resolves relative paths against it.
	Root string
}

// New constructs a Collection and validates its invariants.
func New(profiles map[ProfileID]*Profile, recipes *RecipeTree, root string) (*Collection, error) {
	c := &Collection{Profiles: profiles, Recipes: recipes, Root: root}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate enforces the default-profile-uniqueness invariant (spec.md §3,
// §8 "Profile uniqueness"): loading a collection with two profiles flagged
// default must fail.
func (c *Collection) Validate() error {
	var defaultID ProfileID
	seenDefault := false
	for id, p := range c.Profiles {
		if !p.Default {
			continue
		}
		if seenDefault {
			return fmt.Errorf("collection: multiple default profiles (%q and %q)", defaultID, id)
		}
		seenDefault = true
		defaultID = id
	}
	for _, p := range c.Profiles {
		if p.Data == nil {
			return fmt.Errorf("collection: profile %q has nil data map", p.ID)
		}
	}
	return validateRecipeTree(c.Recipes)
}

func validateRecipeTree(t *RecipeTree) error {
	if t == nil {
		return nil
	}
	for _, id := range t.order {
		node := t.nodes[id]
		switch node.Kind {
		case NodeRecipe:
			if err := validateRecipe(node.Recipe); err != nil {
				return err
			}
		case NodeFolder:
			if err := validateRecipeTree(node.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// DefaultProfile returns the profile flagged default, if any.
func (c *Collection) DefaultProfile() (*Profile, bool) {
	for _, p := range c.Profiles {
		if p.Default {
			return p, true
		}
	}
	return nil, false
}

// FindRecipe searches the whole collection for a recipe by id.
func (c *Collection) FindRecipe(id RecipeID) (*Recipe, bool) {
	return c.Recipes.FindRecipe(id)
}

func validateRecipe(r *Recipe) error {
	if !validMethod(r.Method) {
		return fmt.Errorf("collection: recipe %q has invalid method %q", r.ID, r.Method)
	}
	return nil
}
