package algo

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOrigin 起点站名不在图中
	ErrUnknownOrigin = errors.New("unknown origin station")
	// ErrUnknownDestination 终点站名不在图中
	ErrUnknownDestination = errors.New("unknown destination station")
	// ErrNoRoute 两站都存在但不连通
	ErrNoRoute = errors.New("no route found")
)

// frontierItem BFS 队列中的状态: 当前站名, 到达路径, 每一跳使用的线路
type frontierItem struct {
	name  string
	path  []string
	lines []string
}

// FindRoute 使用 BFS 寻找站数最少的路径 (不加权, 按跳数最优)
// 平行边 (同一对站点多条线路) 取邻接表中先遍历到的那条
func (g *Graph) FindRoute(origin, destination string) (*Route, error) {
	if !g.HasStation(origin) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrigin, origin)
	}
	if !g.HasStation(destination) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDestination, destination)
	}

	queue := []frontierItem{{name: origin, path: []string{origin}}}
	visited := map[string]bool{origin: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.name == destination {
			return g.newRoute(current.path, current.lines), nil
		}

		// 入队前标记已访问, 保证每个站只展开一次
		for _, edge := range g.Neighbors(current.name) {
			if visited[edge.To] {
				continue
			}
			visited[edge.To] = true
			queue = append(queue, frontierItem{
				name:  edge.To,
				path:  appendCopy(current.path, edge.To),
				lines: appendCopy(current.lines, edge.LineCode),
			})
		}
	}

	return nil, fmt.Errorf("%w: %q -> %q", ErrNoRoute, origin, destination)
}

// appendCopy 追加元素到新切片, 避免兄弟节点共享底层数组
func appendCopy(s []string, v string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}
