package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/aritzolea/peaksight/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	peakType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Peak",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"elevation_m": &graphql.Field{Type: graphql.Float},
			"source":      &graphql.Field{Type: graphql.String},
			"distance":    &graphql.Field{Type: graphql.Float},
		},
	})

	pairType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PeakPair",
		Fields: graphql.Fields{
			"a":           &graphql.Field{Type: peakType},
			"b":           &graphql.Field{Type: peakType},
			"index_a":     &graphql.Field{Type: graphql.Int},
			"index_b":     &graphql.Field{Type: graphql.Int},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	visibilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VisibilityResult",
		Fields: graphql.Fields{
			"peak_a":           &graphql.Field{Type: peakType},
			"peak_b":           &graphql.Field{Type: peakType},
			"distance_km":      &graphql.Field{Type: graphql.Float},
			"horizon_limit_km": &graphql.Field{Type: graphql.Float},
			"curvature_drop_m": &graphql.Field{Type: graphql.Float},
			"clear":            &graphql.Field{Type: graphql.Boolean},
			"cache_empty":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"peaks": &graphql.Field{
				Type:        graphql.NewList(peakType),
				Description: "List peaks at or above an elevation floor",
				Args: graphql.FieldConfigArgument{
					"min_elevation_m": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					minElevation := p.Args["min_elevation_m"].(float64)
					return deps.Peaks.ListAbove(p.Context, minElevation)
				},
			},
			"peaksNearby": &graphql.Field{
				Type:        graphql.NewList(peakType),
				Description: "Find peaks near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 25000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Peaks.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"searchPeaks": &graphql.Field{
				Type:        graphql.NewList(peakType),
				Description: "Search peaks by name (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Peaks.Search(p.Context, q, limit)
				},
			},
			"peak": &graphql.Field{
				Type:        peakType,
				Description: "Get a peak by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Peaks.GetByID(p.Context, id)
				},
			},
			"visibility": &graphql.Field{
				Type:        visibilityType,
				Description: "Line-of-sight verdict between two peaks",
				Args: graphql.FieldConfigArgument{
					"a": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"b": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					idA := p.Args["a"].(string)
					idB := p.Args["b"].(string)
					result, err := deps.Visibility.Evaluate(p.Context, idA, idB)
					if err != nil {
						if errors.Is(err, domain.ErrDegenerateGeometry) {
							return nil, errors.New("peaks are coincident; no sight line exists")
						}
						return nil, err
					}
					return result, nil
				},
			},
			"candidatePairs": &graphql.Field{
				Type:        graphql.NewList(pairType),
				Description: "Peak pairs inside a distance band",
				Args: graphql.FieldConfigArgument{
					"min_km":          &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 100.0},
					"max_km":          &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"min_elevation_m": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 3962.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					minKm := p.Args["min_km"].(float64)
					maxKm := p.Args["max_km"].(float64)
					minElevation := p.Args["min_elevation_m"].(float64)
					return deps.Pairs.FindCandidates(p.Context, minElevation, minKm, maxKm)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
