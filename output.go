package main

import (
	"sort"
	"strings"
)

// Node represents an entry in the directory tree of matched files.
type Node struct {
	Name     string
	IsDir    bool
	Children []*Node
}

// buildTree constructs a hierarchical tree from slash-separated relative
// paths. Intermediate directories are created as needed.
func buildTree(relPaths []string, rootName string) *Node {
	root := &Node{Name: rootName, IsDir: true}
	dirs := map[string]*Node{"": root}

	for _, rel := range relPaths {
		parts := strings.Split(rel, "/")
		parent := root
		prefix := ""
		for i, part := range parts {
			if i == len(parts)-1 {
				parent.Children = append(parent.Children, &Node{Name: part})
				break
			}
			if prefix == "" {
				prefix = part
			} else {
				prefix += "/" + part
			}
			dir, ok := dirs[prefix]
			if !ok {
				dir = &Node{Name: part, IsDir: true}
				dirs[prefix] = dir
				parent.Children = append(parent.Children, dir)
			}
			parent = dir
		}
	}

	sortChildren(root)
	return root
}

// sortChildren recursively sorts children: files first, then directories, each by name.
func sortChildren(node *Node) {
	if !node.IsDir || len(node.Children) == 0 {
		return
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return !node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}

// printTree generates the string representation of the tree.
func printTree(root *Node) string {
	var builder strings.Builder
	builder.WriteString(root.Name)
	builder.WriteString("\n")
	printNode(&builder, root.Children, "")
	return builder.String()
}

// printNode is a helper function for recursively printing tree nodes.
func printNode(builder *strings.Builder, children []*Node, prefix string) {
	for i, node := range children {
		connector := "├── "
		newPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			newPrefix = prefix + "    "
		}

		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(node.Name)
		if node.IsDir {
			builder.WriteString("/")
		}
		builder.WriteString("\n")

		if node.IsDir && len(node.Children) > 0 {
			printNode(builder, node.Children, newPrefix)
		}
	}
}

// treeSection wraps a printed tree in a plain fenced block for the top of the document.
func treeSection(tree string) string {
	return fence + "\n" + tree + fence + "\n\n"
}
