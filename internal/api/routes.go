// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"net/http"

	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/params"
)

const (
	view        = models.PermissionView
	edit        = models.PermissionEdit
	transfer    = models.PermissionTransfer
	fullControl = models.PermissionFullControl
)

// routes is the route table. Paths are relative to BasePath.
func (h *Handler) routes() []*endpoint {
	return []*endpoint{
		// Health and schema
		{
			pattern: "/health/live", tag: "Health",
			methods: map[string]method{
				http.MethodGet: {id: "HealthLive", summary: "Liveness check.", public: true, handle: h.healthLive},
			},
		},
		{
			pattern: "/health/ready", tag: "Health",
			methods: map[string]method{
				http.MethodGet: {id: "HealthReady", summary: "Readiness check: store reachable and event publisher healthy.", public: true, handle: h.healthReady},
			},
		},
		{
			pattern: "/schema", tag: "Tator",
			methods: map[string]method{
				http.MethodGet: {id: "GetSchema", summary: "Get the Swagger document of this API.", public: true, handle: h.getSchema},
			},
		},

		// Authentication
		{
			pattern: "/auth/token", tag: "Auth",
			methods: map[string]method{
				http.MethodPost: {
					id: "CreateToken", summary: "Exchange a username and password for a login token.",
					public: true, credentials: true, handle: h.createLoginToken,
					fields: []params.Field{
						{Name: "username", In: params.InBody, Required: true, Type: params.TypeString},
						{Name: "password", In: params.InBody, Required: true, Type: params.TypeString},
					},
				},
			},
		},
		{
			pattern: "/users/me", tag: "Tator",
			methods: map[string]method{
				http.MethodGet: {id: "Whoami", summary: "Get the user making the request.", handle: h.whoami},
			},
		},
		{
			pattern: "/users/{id}", tag: "Tator",
			common:  []params.Field{pathInt("id", "A unique integer identifying a user.")},
			methods: map[string]method{
				http.MethodGet: {id: "GetUser", summary: "Get a user. Visible to the user, to superusers and to members of a shared project.", handle: h.getUser},
				http.MethodPatch: {
					id: "UpdateUser", summary: "Update a user's name or email. Only the user or a superuser may.", handle: h.updateUser,
					fields: []params.Field{
						{Name: "first_name", In: params.InBody, Type: params.TypeString, Description: "First name of user."},
						{Name: "last_name", In: params.InBody, Type: params.TypeString, Description: "Last name of user."},
						{Name: "email", In: params.InBody, Type: params.TypeString, Description: "Email address of user."},
					},
				},
			},
		},
		{
			pattern: "/auth/api-tokens", tag: "Auth",
			methods: map[string]method{
				http.MethodGet: {id: "GetAPITokenList", summary: "List the API tokens of the current user.", handle: h.listAPITokens},
				http.MethodPost: {
					id: "CreateAPIToken", summary: "Create an API token. The key is only returned once.",
					status: http.StatusCreated, handle: h.createAPIToken,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Required: true, Type: params.TypeString, Description: "Label of the token."},
					},
				},
			},
		},
		{
			pattern: "/auth/api-tokens/{digest}", tag: "Auth",
			common: []params.Field{
				{Name: "digest", In: params.InPath, Required: true, Type: params.TypeString, Description: "Digest identifying the token."},
			},
			methods: map[string]method{
				http.MethodDelete: {id: "DeleteAPIToken", summary: "Revoke an API token.", handle: h.deleteAPIToken},
			},
		},

		// Projects
		{
			pattern: "/projects", tag: "Project",
			methods: map[string]method{
				http.MethodGet: {id: "GetProjectList", summary: "List the projects the user is a member of.", handle: h.listProjects},
				http.MethodPost: {
					id: "CreateProject", summary: "Create a project. The creator gets Full Control.",
					status: http.StatusCreated, handle: h.createProject,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Required: true, Type: params.TypeString, Description: "Name of the project."},
						{Name: "summary", In: params.InBody, Type: params.TypeString, Default: "", Description: "Summary of the project."},
					},
				},
			},
		},
		{
			pattern: "/projects/{project}", tag: "Project",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetProject", summary: "Get a project.", need: view, projectPath: true, handle: h.getProject},
				http.MethodPatch: {
					id: "UpdateProject", summary: "Update a project.", need: fullControl, projectPath: true, handle: h.updateProject,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Type: params.TypeString},
						{Name: "summary", In: params.InBody, Type: params.TypeString},
					},
				},
				http.MethodDelete: {id: "DeleteProject", summary: "Delete a project and everything in it.", need: fullControl, projectPath: true, handle: h.deleteProject},
			},
		},
		{
			pattern: "/projects/{project}/memberships", tag: "Membership",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetMembershipList", summary: "List project members.", need: fullControl, projectPath: true, handle: h.listMemberships},
				http.MethodPost: {
					id: "CreateMembership", summary: "Add a member or change a member's permission.",
					need: fullControl, projectPath: true, status: http.StatusCreated, handle: h.createMembership,
					fields: []params.Field{
						{Name: "user", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1)},
						{Name: "permission", In: params.InBody, Required: true, Type: params.TypeString, Enum: permissionNames()},
					},
				},
			},
		},
		{
			pattern: "/projects/{project}/versions", tag: "Version",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetVersionList", summary: "List versions.", need: view, projectPath: true, handle: h.listVersions},
				http.MethodPost: {
					id: "CreateVersion", summary: "Create a version.", need: edit, projectPath: true,
					status: http.StatusCreated, handle: h.createVersion,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Required: true, Type: params.TypeString},
						{Name: "description", In: params.InBody, Type: params.TypeString, Default: ""},
						{Name: "show_empty", In: params.InBody, Type: params.TypeBoolean, Default: true,
							Description: "Whether to show this version on media for which no annotations exist."},
					},
				},
			},
		},
		h.entityTypeEndpoint("/projects/{project}/media-types", "MediaType", models.KindMedia),
		h.entityTypeEndpoint("/projects/{project}/localization-types", "LocalizationType", models.KindLocalization),
		h.entityTypeEndpoint("/projects/{project}/state-types", "StateType", models.KindState),
		h.entityTypeEndpoint("/projects/{project}/leaf-types", "LeafType", models.KindLeaf),

		// Attribute types
		{
			pattern: "/projects/{project}/attribute-types", tag: "AttributeType",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {
					id: "GetAttributeTypeList", summary: "List attribute types.", need: fullControl, projectPath: true, handle: h.listAttributeTypes,
					fields: []params.Field{
						{Name: "applies_to", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(1),
							Description: "Unique integer identifying an entity type that this attribute describes."},
					},
				},
				http.MethodPost: {
					id: "CreateAttributeType", summary: "Create an attribute type.", need: fullControl, projectPath: true,
					status: http.StatusCreated, handle: h.createAttributeType, fields: attributeTypeBody(),
				},
			},
		},
		{
			pattern: "/attribute-types/{pk}", tag: "AttributeType",
			common:  []params.Field{pathInt("pk", "A unique integer identifying an attribute type.")},
			methods: map[string]method{
				http.MethodGet: {id: "GetAttributeType", summary: "Get an attribute type.", need: fullControl, handle: h.getAttributeType},
				http.MethodPatch: {
					id: "UpdateAttributeType", summary: "Rename an attribute type or change its description. A rename moves stored values.",
					need: fullControl, handle: h.updateAttributeType,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Type: params.TypeString, Description: "New name of the attribute."},
						{Name: "description", In: params.InBody, Type: params.TypeString, Description: "New description of the attribute."},
					},
				},
				http.MethodDelete: {id: "DeleteAttributeType", summary: "Delete an attribute type and its stored values.", need: fullControl, handle: h.deleteAttributeType},
			},
		},

		// Media
		{
			pattern: "/projects/{project}/media", tag: "Media",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetMediaList", summary: "List media.", need: view, projectPath: true, handle: h.listMedia, fields: mediaFilterFields()},
				http.MethodPost: {
					id: "CreateMedia", summary: "Create a media record.", need: transfer, projectPath: true,
					status: http.StatusCreated, handle: h.createMedia, fields: mediaBody(true),
				},
			},
		},
		{
			pattern: "/media/{id}", tag: "Media",
			common:  []params.Field{idPath},
			methods: map[string]method{
				http.MethodGet:    {id: "GetMedia", summary: "Get a media record.", need: view, handle: h.getMedia},
				http.MethodPatch:  {id: "UpdateMedia", summary: "Update a media record.", need: transfer, handle: h.updateMedia, fields: mediaBody(false)},
				http.MethodDelete: {id: "DeleteMedia", summary: "Delete a media record and its annotations.", need: transfer, handle: h.deleteMedia},
			},
		},
		{
			pattern: "/projects/{project}/section-analysis", tag: "SectionAnalysis",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetSectionAnalysis", summary: "Count media per section.", need: view, projectPath: true, handle: h.sectionAnalysis, fields: mediaFilterFields()},
			},
		},

		// Localizations
		{
			pattern: "/projects/{project}/localizations", tag: "Localization",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetLocalizationList", summary: "List localizations.", need: view, projectPath: true, handle: h.listLocalizations, fields: annotationFilterFields()},
				http.MethodPost: {
					id: "CreateLocalizationList", summary: "Create one localization, or many with `many`.",
					need: edit, projectPath: true, status: http.StatusCreated, handle: h.createLocalizations, fields: localizationCreateBody(),
				},
				http.MethodPatch: {
					id: "UpdateLocalizationList", summary: "Update attributes of every selected localization.",
					need: edit, projectPath: true, handle: h.patchLocalizations,
					fields: append(annotationFilterFields(), params.Field{Name: "attributes", In: params.InBody, Required: true, Type: params.TypeObject}),
				},
				http.MethodDelete: {id: "DeleteLocalizationList", summary: "Delete every selected localization.", need: edit, projectPath: true, handle: h.deleteLocalizations, fields: annotationFilterFields()},
			},
		},
		{
			pattern: "/localizations/{id}", tag: "Localization",
			common:  []params.Field{idPath},
			methods: map[string]method{
				http.MethodGet:    {id: "GetLocalization", summary: "Get a localization.", need: view, handle: h.getLocalization},
				http.MethodPatch:  {id: "UpdateLocalization", summary: "Update a localization.", need: edit, handle: h.patchLocalization, fields: localizationPatchBody()},
				http.MethodDelete: {id: "DeleteLocalization", summary: "Delete a localization.", need: edit, handle: h.deleteLocalization},
			},
		},

		// States
		{
			pattern: "/projects/{project}/states", tag: "State",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {
					id: "GetStateList", summary: "List states, as JSON or CSV.", need: view, projectPath: true, handle: h.listStates,
					produces: []string{"application/json", "text/csv"},
					fields: append(annotationFilterFields(), params.Field{
						Name: "format", In: params.InQuery, Type: params.TypeString, Default: "json", Enum: []any{"json", "csv"},
						Description: "Response format. csv requires type.",
					}),
				},
				http.MethodPost: {
					id: "CreateState", summary: "Create a state.", need: edit, projectPath: true,
					status: http.StatusCreated, listOrScalar: []string{"media_ids", "localization_ids"},
					handle: h.createState, fields: stateCreateBody(),
				},
				http.MethodPatch: {
					id: "UpdateStateList", summary: "Update attributes of every selected state.",
					need: edit, projectPath: true, handle: h.patchStates,
					fields: append(annotationFilterFields(), params.Field{Name: "attributes", In: params.InBody, Required: true, Type: params.TypeObject}),
				},
				http.MethodDelete: {id: "DeleteStateList", summary: "Delete every selected state.", need: edit, projectPath: true, handle: h.deleteStates, fields: annotationFilterFields()},
			},
		},
		{
			pattern: "/states/{id}", tag: "State",
			common:  []params.Field{idPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetState", summary: "Get a state.", need: view, handle: h.getState},
				http.MethodPatch: {
					id: "UpdateState", summary: "Update a state.", need: edit, handle: h.patchState,
					fields: []params.Field{
						{Name: "version", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(1)},
						{Name: "modified", In: params.InBody, Type: params.TypeBoolean},
						attributesBody,
					},
				},
				http.MethodDelete: {id: "DeleteState", summary: "Delete a state.", need: edit, handle: h.deleteState},
			},
		},

		// Leaves
		{
			pattern: "/projects/{project}/leaves", tag: "Leaf",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetLeafList", summary: "List leaves, ordered by path.", need: view, projectPath: true, handle: h.listLeaves, fields: leafFilterFields()},
				http.MethodPost: {
					id: "CreateLeafList", summary: "Create one leaf, or many with `many`.",
					need: edit, projectPath: true, status: http.StatusCreated, handle: h.createLeaves, fields: leafCreateBody(),
				},
				http.MethodPatch: {
					id: "UpdateLeafList", summary: "Update attributes of every selected leaf.",
					need: edit, projectPath: true, handle: h.patchLeaves,
					fields: append(leafFilterFields(), params.Field{Name: "attributes", In: params.InBody, Required: true, Type: params.TypeObject}),
				},
				http.MethodDelete: {id: "DeleteLeafList", summary: "Delete every selected leaf and its descendants.", need: edit, projectPath: true, handle: h.deleteLeaves, fields: leafFilterFields()},
			},
		},
		{
			pattern: "/projects/{project}/leaves/suggestion/{ancestor}", tag: "Leaf",
			common: []params.Field{
				projectPath,
				{Name: "ancestor", In: params.InPath, Required: true, Type: params.TypeString,
					Description: "Path of the leaf below which to search, such as ITIS.Animalia."},
			},
			methods: map[string]method{
				http.MethodGet: {
					id: "LeafSuggestion", summary: "Autocomplete leaf names below an ancestor.", need: view, projectPath: true, handle: h.leafSuggestions,
					fields: []params.Field{
						{Name: "query", In: params.InQuery, Required: true, Type: params.TypeString, Description: "Text the suggested names contain."},
						{Name: "minLevel", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(1),
							Description: "Smallest depth below the ancestor to suggest. Defaults to 1."},
					},
				},
			},
		},
		{
			pattern: "/leaves/{id}", tag: "Leaf",
			common:  []params.Field{idPath},
			methods: map[string]method{
				http.MethodGet: {id: "GetLeaf", summary: "Get a leaf.", need: view, handle: h.getLeaf},
				http.MethodPatch: {
					id: "UpdateLeaf", summary: "Rename a leaf or change its attributes. A rename moves its descendants.", need: edit, handle: h.patchLeaf,
					fields: []params.Field{
						{Name: "name", In: params.InBody, Type: params.TypeString, Description: "New name of the leaf."},
						attributesBody,
					},
				},
				http.MethodDelete: {id: "DeleteLeaf", summary: "Delete a leaf and its descendants.", need: edit, handle: h.deleteLeaf},
			},
		},

		// Change stream
		{
			pattern: "/projects/{project}/changes", tag: "Changes",
			common:  []params.Field{projectPath},
			methods: map[string]method{
				http.MethodGet: {
					id: "GetChanges", summary: "Websocket stream of annotation changes in a project.",
					need: view, projectPath: true, handle: h.changes,
					fields: []params.Field{
						{Name: "access_token", In: params.InQuery, Type: params.TypeString,
							Description: "Login token, for clients that cannot set the Authorization header."},
					},
				},
			},
		},
	}
}

func permissionNames() []any {
	out := make([]any, len(models.Permissions))
	for i, p := range models.Permissions {
		out[i] = p.String()
	}
	return out
}

func (h *Handler) entityTypeEndpoint(pattern, tag string, kind models.EntityKind) *endpoint {
	fields := []params.Field{
		{Name: "name", In: params.InBody, Required: true, Type: params.TypeString},
		{Name: "description", In: params.InBody, Type: params.TypeString, Default: ""},
		{Name: "media_types", In: params.InBody, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "Media types this type applies to. Empty means all."},
		{Name: "visible", In: params.InBody, Type: params.TypeBoolean, Default: true},
	}
	switch kind {
	case models.KindMedia:
		fields = append(fields, params.Field{Name: "dtype", In: params.InBody, Required: true, Type: params.TypeString,
			Enum: []any{models.MediaImage, models.MediaVideo, models.MediaMulti}})
	case models.KindLocalization:
		fields = append(fields,
			params.Field{Name: "dtype", In: params.InBody, Required: true, Type: params.TypeString,
				Enum: []any{models.ShapeBox, models.ShapeLine, models.ShapeDot}},
			params.Field{Name: "colors", In: params.InBody, Type: params.TypeObject,
				Description: "Map of attribute values to hex colors."},
			params.Field{Name: "line_width", In: params.InBody, Type: params.TypeInteger, Default: int64(2),
				Minimum: params.Bound(0), Maximum: params.Bound(100)},
		)
	case models.KindState:
		fields = append(fields,
			params.Field{Name: "association", In: params.InBody, Required: true, Type: params.TypeString,
				Enum: []any{string(models.AssociateMedia), string(models.AssociateFrame), string(models.AssociateLocalization)}},
			params.Field{Name: "interpolation", In: params.InBody, Type: params.TypeString, Default: string(models.InterpolateNone),
				Enum: []any{string(models.InterpolateNone), string(models.InterpolateLatest)}},
		)
	}

	list := func(w http.ResponseWriter, c *call) (any, error) { return h.listEntityTypes(c, kind) }
	create := func(w http.ResponseWriter, c *call) (any, error) { return h.createEntityType(c, kind) }
	return &endpoint{
		pattern: pattern, tag: tag,
		common: []params.Field{projectPath},
		methods: map[string]method{
			http.MethodGet: {id: "Get" + tag + "List", summary: "List " + string(kind) + " types.", need: view, projectPath: true, handle: list},
			http.MethodPost: {
				id: "Create" + tag, summary: "Create a " + string(kind) + " type.", need: fullControl, projectPath: true,
				status: http.StatusCreated, handle: create, fields: fields,
			},
		},
	}
}

func attributeTypeBody() []params.Field {
	return []params.Field{
		{Name: "name", In: params.InBody, Required: true, Type: params.TypeString, Description: "Name of the attribute."},
		{Name: "description", In: params.InBody, Type: params.TypeString, Default: "", Description: "Description of the attribute."},
		{Name: "dtype", In: params.InBody, Required: true, Type: params.TypeString, Description: "Data type of the attribute.",
			Enum: []any{"bool", "int", "float", "enum", "str", "datetime", "geopos"}},
		{Name: "applies_to", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying an entity type that this attribute describes."},
		{Name: "order", In: params.InBody, Type: params.TypeInteger, Default: int64(0),
			Description: "Integer specifying where this attribute is displayed in the UI. Negative values are hidden by default."},
		{Name: "default", In: params.InBody, Type: params.TypeString, Description: "Default value for the attribute."},
		{Name: "lower_bound", In: params.InBody, Type: params.TypeNumber, Description: "Lower bound for float or int dtype."},
		{Name: "upper_bound", In: params.InBody, Type: params.TypeNumber, Description: "Upper bound for float or int dtype."},
		{Name: "choices", In: params.InBody, Type: params.TypeArray, Items: params.TypeString, Description: "Array of possible values for enum dtype."},
		{Name: "labels", In: params.InBody, Type: params.TypeArray, Items: params.TypeString, Description: "Array of labels for enum dtype."},
		{Name: "autocomplete", In: params.InBody, Type: params.TypeObject,
			Description: "Object holding the serviceUrl of an autocomplete service, such as " + BasePath + "/projects/{project}/leaves/suggestion/{ancestor}."},
		{Name: "use_current", In: params.InBody, Type: params.TypeBoolean, Default: false, Description: "True to use current datetime as default."},
	}
}
