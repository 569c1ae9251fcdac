package router

import "strings"

// routeSet matches requests by their httprouter pattern. An entry is either
// a bare pattern, which matches every method, or "METHOD /pattern".
type routeSet struct {
	any    map[string]struct{}
	method map[string]struct{}
}

func newRouteSet(entries []string) routeSet {
	rs := routeSet{any: map[string]struct{}{}, method: map[string]struct{}{}}
	for _, e := range entries {
		fields := strings.Fields(e)
		switch len(fields) {
		case 1:
			rs.any[fields[0]] = struct{}{}
		case 2:
			rs.method[strings.ToUpper(fields[0])+" "+fields[1]] = struct{}{}
		}
	}
	return rs
}

func (rs routeSet) has(method, route string) bool {
	if _, ok := rs.any[route]; ok {
		return true
	}
	_, ok := rs.method[method+" "+route]
	return ok
}

func (rs routeSet) empty() bool {
	return len(rs.any) == 0 && len(rs.method) == 0
}
