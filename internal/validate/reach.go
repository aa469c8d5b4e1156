package validate

import "github.com/jpl-au/sopstory/internal/story"

// Unreachable returns the ids of steps that no path of transitions from the
// start step leads to, in authoring order. Dangling targets are ignored.
// Returns nil when the start step does not exist. When ids repeat, the
// first step with an id supplies its transitions.
func Unreachable(d *story.Document) []string {
	start, ok := d.Start()
	if !ok {
		return nil
	}

	reached := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		s, _ := d.Step(queue[0])
		queue = queue[1:]
		for _, t := range s.Transitions {
			if !reached[t.To] && d.Has(t.To) {
				reached[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}

	var out []string
	listed := map[string]bool{}
	for _, s := range d.Steps {
		if s.ID == "" || reached[s.ID] || listed[s.ID] {
			continue
		}
		listed[s.ID] = true
		out = append(out, s.ID)
	}
	return out
}
