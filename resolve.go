package jsonbind

// updateCallbacks re-resolves the active handlers for the current path. It
// runs after every key, map end, array start and array end. With childStart
// == 0 resolution starts over from the schema root: contexts pushed for the
// previous position are released and the handler stack is rebuilt.
func (s *Session) updateCallbacks(nodes []*Node, childStart int) {
	path := s.path.String()
	if childStart == 0 {
		s.active.reset()
		s.current = nil
		s.siblings = nil
		s.objs.release(1)
		s.handlerStack = s.handlerStack[:0]
		if s.activePaths != nil {
			if _, ok := s.activePaths[path]; !ok {
				s.active.muted = true
				return
			}
		}
		if nodes == nil {
			nodes = s.nodes
		}
	}
	s.resolve(path, nodes, childStart)
}

// resolve scans nodes in declared order against path[start:]. The first
// accepted match wins. It reports whether any node was accepted. The last
// list scanned is kept for the accepted-paths diagnostic.
func (s *Session) resolve(path string, nodes []*Node, start int) bool {
	s.siblings = nodes
	rest := path[start:]
	for _, n := range nodes {
		if n.isSentinel() {
			break
		}
		caps, end, ok := n.pattern().Match(rest)
		if !ok {
			continue
		}
		branch := n.IsBranch()
		if branch {
			// A branch must stop on a segment boundary.
			if end != len(rest) && rest[end] != '/' {
				continue
			}
		} else if end != len(rest) {
			continue
		}

		caps.Index = s.ArrayIndex()
		if n.ObjectProvider != nil {
			s.objs.push(n.ObjectProvider(caps, s.objs.top()))
		}
		if !branch {
			s.current = n
			s.active.merge(n.Handlers)
			return true
		}
		s.handlerStack = append(s.handlerStack, n)
		if end < len(rest) {
			s.resolve(path, n.Children, start+end)
		}
		// Handlers set on the branch itself take precedence over its children.
		s.active.merge(n.Handlers)
		return true
	}
	s.handlerStack = append(s.handlerStack, nil)
	return false
}
