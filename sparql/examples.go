package sparql

import "metro-routing/model"

// Examples 前端查询面板中展示的示例查询
func Examples() []model.ExampleQuery {
	return []model.ExampleQuery{
		{
			Name:        "All metro lines",
			Description: "Lists every metro line in the dataset",
			Query: prefixes + `
SELECT ?label ?name ?description WHERE {
  ?line rdf:type metro:MetroLine .
  OPTIONAL { ?line metro:lineEtiq ?label }
  OPTIONAL { ?line metro:lineCode ?code }
  OPTIONAL { ?line metro:lineName ?name }
  OPTIONAL { ?line metro:lineDescription ?description }
}
ORDER BY ?code
LIMIT 50`,
		},
		{
			Name:        "Stations per line",
			Description: "Counts the stations served by each line",
			Query: prefixes + `
SELECT ?label (COUNT(DISTINCT ?station) AS ?numStations) WHERE {
  ?line rdf:type metro:MetroLine .
  ?line metro:lineEtiq ?label .
  ?stationLine metro:onLine ?line .
  ?stationLine metro:relatesTo ?station .
}
GROUP BY ?label
ORDER BY DESC(?numStations)`,
		},
		{
			Name:        "Stations with names",
			Description: "Station names with their Wikidata link when available",
			Query: prefixes + `
SELECT ?station ?name ?wikidata WHERE {
  ?station rdf:type metro:Station .
  ?station rdfs:label ?name .
  OPTIONAL { ?station owl:sameAs ?wikidata }
}
ORDER BY ?name`,
		},
		{
			Name:        "Interchange stations",
			Description: "Stations served by more than one line",
			Query: prefixes + `
SELECT ?name (COUNT(DISTINCT ?line) AS ?numLines) WHERE {
  ?station rdf:type metro:Station .
  ?station rdfs:label ?name .
  ?stationLine metro:relatesTo ?station .
  ?stationLine metro:onLine ?line .
}
GROUP BY ?name
HAVING (COUNT(DISTINCT ?line) > 1)
ORDER BY DESC(?numLines)
LIMIT 20`,
		},
		{
			Name:        "Line details",
			Description: "Colour, terminals and Wikidata link of line 4",
			Query: prefixes + `
SELECT ?line ?code ?color ?origin ?destination (SAMPLE(?wd) AS ?wikidata)
WHERE {
  ?line rdf:type metro:MetroLine .
  ?line metro:lineCode ?code .
  OPTIONAL { ?line metro:lineColor ?color }
  OPTIONAL { ?line metro:originStation ?origin }
  OPTIONAL { ?line metro:destinationStation ?destination }
  OPTIONAL { ?line owl:sameAs ?wd }
  FILTER(?code = 4)
}
GROUP BY ?line ?code ?color ?origin ?destination`,
		},
		{
			Name:        "Instances per class",
			Description: "How many resources of each type the dataset holds",
			Query: `SELECT ?class (COUNT(?s) AS ?count) WHERE {
  ?s a ?class
}
GROUP BY ?class
ORDER BY DESC(?count)
LIMIT 20`,
		},
		{
			Name:        "Labelled resources",
			Description: "Ten resources with their labels",
			Query: `PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?s ?label WHERE {
  ?s a ?type .
  OPTIONAL { ?s rdfs:label ?label }
}
LIMIT 10`,
		},
	}
}
