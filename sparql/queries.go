package sparql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const prefixes = `PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX metro: <https://data.example.org/transport/bcn/metro/ontology#>
PREFIX geo: <http://www.opengis.net/ont/geosparql#>
PREFIX owl: <http://www.w3.org/2002/07/owl#>
`

// networkQuery 整个网络的扁平事实, 不分页不过滤
const networkQuery = prefixes + `
SELECT ?station ?stationName ?lineCode ?order ?lineGeometry ?stationGeometry
WHERE {
  ?station a metro:Station ;
           rdfs:label ?stationName .
  ?accessPoint metro:relatesTo ?station ;
               metro:onLine ?line ;
               metro:stationOrder ?order .
  ?line metro:lineCode ?lineCode .
  OPTIONAL { ?line metro:hasGeometry ?lineGeometry }
  OPTIONAL { ?station metro:hasGeometry ?stationGeometry }
}
ORDER BY ?lineCode ?order
`

const stationsQuery = prefixes + `
SELECT ?station ?name ?geometry
       (GROUP_CONCAT(DISTINCT ?lineCode; separator=",") AS ?lines)
WHERE {
  ?station rdf:type metro:Station .
  ?station rdfs:label ?name .
  OPTIONAL { ?station metro:hasGeometry ?geometry }
  OPTIONAL {
    ?stationLine metro:relatesTo ?station .
    ?stationLine metro:onLine ?line .
    ?line metro:lineCode ?lineCode
  }
}
GROUP BY ?station ?name ?geometry
`

const linesQuery = prefixes + `
SELECT ?line ?lineCode ?lineName ?lineColor ?auxColor ?origin ?destination
       (COUNT(DISTINCT ?station) AS ?numStations)
WHERE {
  ?line rdf:type metro:MetroLine .
  ?line metro:lineCode ?lineCode .
  OPTIONAL { ?line metro:lineName ?lineName }
  OPTIONAL { ?line metro:lineColor ?lineColor }
  OPTIONAL { ?line metro:auxiliaryColor ?auxColor }
  OPTIONAL { ?line metro:originStation ?origin }
  OPTIONAL { ?line metro:destinationStation ?destination }
  OPTIONAL {
    ?stationLine metro:onLine ?line .
    ?stationLine metro:relatesTo ?station
  }
}
GROUP BY ?line ?lineCode ?lineName ?lineColor ?auxColor ?origin ?destination
ORDER BY ?lineCode
`

const lineGeometriesQuery = prefixes + `
SELECT ?lineCode ?lineColor ?geometry
WHERE {
  ?line rdf:type metro:MetroLine .
  ?line metro:lineCode ?lineCode .
  OPTIONAL { ?line metro:lineColor ?lineColor }
  OPTIONAL { ?line metro:hasGeometry ?geometry }
}
ORDER BY ?lineCode
`

const stationDetailsTemplate = prefixes + `
SELECT ?name ?geometry ?inaugurated
       (GROUP_CONCAT(DISTINCT ?lineCode; separator=",") AS ?lines)
WHERE {
  %[1]s rdfs:label ?name .
  OPTIONAL { %[1]s metro:hasGeometry ?geometry }
  OPTIONAL { %[1]s metro:inauguratedDate ?inaugurated }
  OPTIONAL {
    ?stationLine metro:relatesTo %[1]s .
    ?stationLine metro:onLine ?line .
    ?line metro:lineCode ?lineCode
  }
}
GROUP BY ?name ?geometry ?inaugurated
`

const lineDetailsTemplate = prefixes + `
SELECT ?line ?lineColor ?auxColor ?origin ?destination ?stationName ?order
WHERE {
  ?line rdf:type metro:MetroLine .
  ?line metro:lineCode %s .
  OPTIONAL { ?line metro:lineColor ?lineColor }
  OPTIONAL { ?line metro:auxiliaryColor ?auxColor }
  OPTIONAL { ?line metro:originStation ?origin }
  OPTIONAL { ?line metro:destinationStation ?destination }
  OPTIONAL {
    ?stationLine metro:onLine ?line .
    ?stationLine metro:relatesTo ?station .
    ?stationLine metro:stationOrder ?order .
    ?station rdfs:label ?stationName
  }
}
ORDER BY ?order
`

var (
	lineCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	numericPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// ErrInvalidArgument 参数无法安全地拼进查询
var ErrInvalidArgument = errors.New("invalid query argument")

// iriRef 校验并包装 IRI, 拒绝会破坏查询结构的字符
func iriRef(iri string) (string, error) {
	if iri == "" || strings.ContainsAny(iri, "<>\"{}|^`\\ \t\r\n") {
		return "", fmt.Errorf("%w: iri %q", ErrInvalidArgument, iri)
	}
	return "<" + iri + ">", nil
}

// lineCodeLiteral 线路编码在三元组中是数字 (如 4) 或字符串 (如 "L9N")
func lineCodeLiteral(code string) (string, error) {
	if !lineCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: line code %q", ErrInvalidArgument, code)
	}
	if numericPattern.MatchString(code) {
		return code, nil
	}
	return `"` + code + `"`, nil
}
