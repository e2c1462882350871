package purge

// Index enumerates every selector token the stylesheet defines. Classes inside
// functional pseudo-classes are included.
func Index(sheet *Stylesheet) DeclaredSelectors {
	ds := newDeclaredSelectors()
	sheet.Walk(func(n *Node) {
		for _, sel := range SplitSelectorList(n.Prelude) {
			ds.add(ParseSelector(sel))
		}
	})
	return ds
}

func (ds DeclaredSelectors) add(sp SelectorParts) {
	for _, c := range sp.Classes {
		ds.Classes.Add(c)
	}
	for _, c := range sp.Nested {
		ds.Classes.Add(c)
	}
	for _, id := range sp.IDs {
		ds.IDs.Add(id)
	}
	for _, tag := range sp.Tags {
		ds.Tags.Add(tag)
	}
	for _, a := range sp.Attributes {
		ds.AttributeNames.Add(a.Name)
		if a.HasValue {
			ds.AttributeValues.Add(a.Value)
		}
	}
}
