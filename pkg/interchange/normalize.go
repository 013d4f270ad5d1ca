package interchange

import (
	"fmt"
	"strings"

	"github.com/UfukSeker41/api-controller/internal/id"
	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// finalize applies the model invariants to freshly decoded APIs: IDs are
// derived where missing and made unique, methods are normalised and gated,
// authentication is checked and bounded values are clamped.
func finalize(format Format, apis []catalog.API, l *Ledger) error {
	var apiIDs id.Set
	for i := range apis {
		api := &apis[i]

		if strings.TrimSpace(api.Name) == "" {
			return &DecodeError{Format: format, Reason: fmt.Sprintf("api #%d has no name", i+1)}
		}

		if api.ID == "" {
			derived := id.Slug(api.Name)
			if derived == "" {
				derived = "api"
			}
			api.ID = derived
			l.Default(derived, "id", derived)
		}
		if got, collided := apiIDs.Claim(api.ID); collided {
			l.Warn(WarnIDCollision, got, "api id %q already used in this import, renamed to %q", api.ID, got)
			api.ID = got
		}

		if err := finalizeAuth(format, api, l); err != nil {
			return err
		}
		clampAPI(api, l)

		var endpointIDs id.Set
		for j := range api.Endpoints {
			if err := finalizeEndpoint(format, api.ID, &api.Endpoints[j], &endpointIDs, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func finalizeAuth(format Format, api *catalog.API, l *Ledger) error {
	auth := &api.Authentication
	if auth.Type == "" {
		auth.Type = catalog.AuthNone
		l.Default(api.ID, "authentication.type", catalog.AuthNone)
	}

	t, ok := catalog.ParseAuthType(string(auth.Type))
	if !ok {
		return &DecodeError{Format: format, Reason: fmt.Sprintf("api %q: unknown authentication type %q", api.ID, auth.Type)}
	}
	auth.Type = t

	if auth.Location != "" {
		loc, ok := catalog.ParseKeyLocation(string(auth.Location))
		if !ok {
			return &DecodeError{Format: format, Reason: fmt.Sprintf("api %q: unknown api key location %q", api.ID, auth.Location)}
		}
		auth.Location = loc
	}
	if t == catalog.AuthAPIKey && auth.Location == "" {
		return &DecodeError{Format: format, Reason: fmt.Sprintf("api %q: apiKey authentication requires a location", api.ID)}
	}
	return nil
}

func clampAPI(api *catalog.API, l *Ledger) {
	api.Popularity = l.Clamp(api.ID, "popularity", api.Popularity, 0, 100)
	if r := api.Rating; r != nil {
		r.Score = l.Clamp(api.ID, "rating.score", r.Score, 0, 5)
		for i := range r.Reviews {
			r.Reviews[i].Rating = l.Clamp(api.ID, fmt.Sprintf("rating.reviews[%d].rating", i), r.Reviews[i].Rating, 0, 5)
		}
	}
	if s := api.Status; s != nil {
		s.Uptime = l.Clamp(api.ID, "status.uptime", s.Uptime, 0, 100)
	}
	if s := api.Stats; s != nil {
		s.FailureRate = l.Clamp(api.ID, "stats.failureRate", s.FailureRate, 0, 100)
	}
}

func finalizeEndpoint(format Format, apiID string, ep *catalog.Endpoint, ids *id.Set, l *Ledger) error {
	m, ok := catalog.ParseMethod(string(ep.Method))
	if !ok {
		return &DecodeError{Format: format, Reason: fmt.Sprintf("api %q: endpoint %s: unsupported method %q", apiID, ep.Path, ep.Method)}
	}
	ep.Method = m
	if ep.Path == "" {
		return &DecodeError{Format: format, Reason: fmt.Sprintf("api %q: %s endpoint has no path", apiID, m)}
	}

	if ep.ID == "" {
		ep.ID = id.EndpointID(ep.Path, string(m))
		l.Default(apiID, "endpoint id", ep.ID)
	}
	if got, collided := ids.Claim(ep.ID); collided {
		l.Warn(WarnIDCollision, apiID, "endpoint id %q already used, renamed to %q", ep.ID, got)
		ep.ID = got
	}
	l.Fill(apiID, "endpoint "+ep.ID+" name", &ep.Name, string(m)+" "+ep.Path)
	return nil
}

// checkEncodable rejects models no format can represent.
func checkEncodable(format Format, apis []catalog.API) error {
	for i := range apis {
		for _, ep := range apis[i].Endpoints {
			if !ep.Method.Valid() {
				return &EncodeError{Format: format, Reason: fmt.Sprintf("api %q: endpoint %q has unsupported method %q", apis[i].ID, ep.ID, ep.Method)}
			}
			if ep.Path == "" {
				return &EncodeError{Format: format, Reason: fmt.Sprintf("api %q: endpoint %q has no path", apis[i].ID, ep.ID)}
			}
		}
	}
	return nil
}
