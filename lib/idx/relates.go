package idx

import (
	"strconv"

	log "github.com/sirupsen/logrus"
)

const currentAuthenticatorPath = "$.currentAuthenticator"

func indexedPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// referrer is anything that carries relatesTo paths: remediations and
// fields.
type referrer interface {
	referencePaths() []string
	setRelated([]*Authenticator)
	describe() string
}

func (r *Remediation) referencePaths() []string {
	// enroll-poll is sent without a usable relatesTo; it always concerns
	// the authenticator being enrolled.
	if r.Type == RemediationEnrollPoll {
		return []string{currentAuthenticatorPath}
	}
	return r.relatesTo
}

func (r *Remediation) setRelated(related []*Authenticator) { r.authenticators = related }
func (r *Remediation) describe() string                    { return "remediation " + r.Name }

func (f *Field) referencePaths() []string {
	if f.relatesTo == "" {
		return nil
	}
	return []string{f.relatesTo}
}

func (f *Field) setRelated(related []*Authenticator) {
	f.authenticator = nil
	if len(related) > 0 {
		f.authenticator = related[0]
	}
}

func (f *Field) describe() string { return "field " + f.Name }

// relationResolver links referrers to authenticators once the whole
// response has been decoded.
type relationResolver struct {
	strict bool
	log    *log.Entry
}

// collectReferrers walks remediation -> form -> field -> (form | options),
// stopping at leaves.
func collectReferrers(remediations []*Remediation) []referrer {
	var out []referrer
	for _, r := range remediations {
		if r == nil {
			continue
		}
		out = append(out, r)
		out = append(out, collectFieldReferrers(r.Form)...)
	}
	return out
}

func collectFieldReferrers(form *Form) []referrer {
	if form == nil {
		return nil
	}
	var out []referrer
	for _, f := range form.fields {
		out = append(out, f)
		out = append(out, collectFieldReferrers(f.Form)...)
		for _, o := range f.Options {
			out = append(out, o)
			out = append(out, collectFieldReferrers(o.Form)...)
		}
	}
	return out
}

func pathMapping(authenticators *Authenticators) map[string]*Authenticator {
	mapping := map[string]*Authenticator{}
	for _, a := range authenticators.all {
		for _, p := range a.paths {
			mapping[p] = a
		}
	}
	return mapping
}

// resolve links every referrer in remediations. It assigns rather than
// appends, so running it twice leaves the same graph.
func (rr *relationResolver) resolve(remediations []*Remediation, authenticators *Authenticators) error {
	mapping := pathMapping(authenticators)

	for _, ref := range collectReferrers(remediations) {
		paths := ref.referencePaths()
		related, missing := lookupAll(mapping, paths)

		if len(missing) == 0 && len(related) > 0 {
			ref.setRelated(related)
			continue
		}

		// identify can omit the password authenticator it also collects.
		if rem, ok := ref.(*Remediation); ok && rem.Type == RemediationIdentify {
			if current := mapping[currentAuthenticatorPath]; current != nil && current.Kind == AuthenticatorPassword {
				ref.setRelated([]*Authenticator{current})
				continue
			}
		}

		ref.setRelated(nil)
		if len(missing) == 0 {
			continue
		}
		if rr.strict {
			return &MissingRelatedObjectError{Path: missing[0]}
		}
		rr.log.WithField("paths", missing).Debugf("%s: relatesTo not resolved; skipping", ref.describe())
	}

	for _, r := range remediations {
		if r == nil || !r.Type.IsPoll() {
			continue
		}
		for _, a := range r.authenticators {
			if a.poll == nil {
				a.poll = newPollingCapability(a, r, r.referencePaths(), r.flow)
			}
			if r.poll == nil {
				r.poll = a.poll
				if a.poll.remediation != r {
					r.poll = newPollingCapability(a, r, r.referencePaths(), r.flow)
				}
			}
		}
	}
	return nil
}

func lookupAll(mapping map[string]*Authenticator, paths []string) (found []*Authenticator, missing []string) {
	for _, p := range paths {
		a, ok := mapping[p]
		if !ok {
			missing = append(missing, p)
			continue
		}
		dup := false
		for _, f := range found {
			if f == a {
				dup = true
				break
			}
		}
		if !dup {
			found = append(found, a)
		}
	}
	return found, missing
}
