package schema

const baseInstructions = `Você é um extrator de dados jurídicos a serviço da Defensoria Pública.

REGRAS:
1. Não invente dados. Informação ausente vira null.
2. Responda somente com JSON válido no formato pedido, sem texto ao redor.
3. confidence: 0.0 não encontrado, 0.5 inferido ou parcial, 1.0 certeza.
4. Nomes de pessoas exatamente como aparecem no texto.
5. Números de processo no formato CNJ completo (NNNNNNN-NN.NNNN.N.NN.NNNN) quando houver.
6. Datas em ISO (YYYY-MM-DD) sempre que possível.
7. Artigos penais com a lei de origem (ex.: "art. 157, §2º, II, CP").

Atribuições possíveis: JURI, VD, EP, CRIMINAL, CIVEL, INFANCIA.
Réu preso é informação crítica: sempre indique se há menção a prisão.`

// Classifier identifies the document type and practice area.
var Classifier = &Schema{
	ID: "classificacao",
	Task: `TAREFA: Classificar o documento.

document_type deve ser um destes valores:
- sentenca: sentença penal (condenatória, absolutória, pronúncia, extintiva)
- decisao: decisão interlocutória (prisão, liberdade, medida protetiva, recebimento de denúncia)
- laudo: laudo pericial de qualquer tipo
- certidao: certidão (antecedentes, trânsito em julgado, intimação, óbito)
- peticao: petição de qualquer parte
- denuncia: denúncia ou queixa-crime
- outro: qualquer outro documento`,
	Shape: `{
  "document_type": "sentenca | decisao | laudo | certidao | peticao | denuncia | outro",
  "area": "JURI | VD | EP | CRIMINAL | CIVEL | INFANCIA | null",
  "numero_processo": "string ou null",
  "partes": ["string"],
  "resumo": "string (max 300 chars)",
  "reu_preso": false,
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"document_type":   requiredText(),
		"area":            text(),
		"numero_processo": text(),
		"partes":          texts(),
		"resumo":          text(),
		"reu_preso":       flag(),
		"confidence":      confidence(),
	}, "document_type"),
}

// Sentenca extracts a criminal ruling.
var Sentenca = &Schema{
	ID: "sentenca",
	Task: `TAREFA: Extrair os dados estruturados de uma SENTENÇA penal.

Extraia tipo e resultado, réu (nome, alcunha, se está preso), vítima, crime
(tipo penal, artigos, qualificadoras, causas de aumento e diminuição), pena
(reclusão, detenção, multa, regime inicial, substituição, sursis), atenuantes,
agravantes, resumo da fundamentação e metadados (juiz, vara, data, processo).

O regime inicial é essencial para a execução penal. Em caso de desclassificação,
indique o novo crime. Havendo concurso de crimes, liste todos.`,
	Shape: `{
  "tipo_sentenca": "condenatoria | absolutoria | extintiva_punibilidade | desclassificacao | pronuncia | impronuncia | absolvicao_sumaria",
  "resultado": "condenado | absolvido | extinta_punibilidade | desclassificado | pronunciado | impronunciado",
  "reu": {"nome": "string", "alcunha": "string ou null", "reu_preso": false},
  "vitima": "string ou null",
  "crime": {
    "tipo_penal": "string",
    "artigos": ["string"],
    "qualificadoras": ["string"],
    "causas_aumento": ["string"],
    "causas_diminuicao": ["string"]
  },
  "pena": {
    "reclusao_anos": 0, "reclusao_meses": 0,
    "detencao_anos": 0, "detencao_meses": 0,
    "multa_dias": 0,
    "regime_inicial": "fechado | semiaberto | aberto | null",
    "substituicao": "string ou null",
    "sursis": false
  },
  "atenuantes": ["string"],
  "agravantes": ["string"],
  "fundamentacao_resumo": "string (max 500 chars)",
  "juiz": "string ou null",
  "vara": "string ou null",
  "data_sentenca": "YYYY-MM-DD ou null",
  "numero_processo": "string ou null",
  "recurso_cabivel": "string ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"tipo_sentenca": text(),
		"resultado":     text(),
		"reu": nullableObject(map[string]any{
			"nome": text(), "alcunha": text(), "reu_preso": flag(),
		}),
		"vitima": text(),
		"crime": nullableObject(map[string]any{
			"tipo_penal":        text(),
			"artigos":           texts(),
			"qualificadoras":    texts(),
			"causas_aumento":    texts(),
			"causas_diminuicao": texts(),
		}),
		"pena": nullableObject(map[string]any{
			"reclusao_anos":  number(),
			"reclusao_meses": number(),
			"detencao_anos":  number(),
			"detencao_meses": number(),
			"multa_dias":     number(),
			"regime_inicial": text(),
			"substituicao":   text(),
			"sursis":         flag(),
		}),
		"atenuantes":           texts(),
		"agravantes":           texts(),
		"fundamentacao_resumo": text(),
		"juiz":                 text(),
		"vara":                 text(),
		"data_sentenca":        text(),
		"numero_processo":      text(),
		"recurso_cabivel":      text(),
		"confidence":           confidence(),
	}),
}

// Decisao extracts an interlocutory decision.
var Decisao = &Schema{
	ID: "decisao",
	Task: `TAREFA: Extrair os dados de uma DECISÃO interlocutória.

Identifique o tipo da decisão (prisão preventiva, liberdade provisória, medida
protetiva, recebimento de denúncia, progressão de regime etc.), o resultado
(deferido, indeferido, parcialmente deferido, revogado, mantido), os
fundamentos principais, prazos impostos e medidas determinadas.`,
	Shape: `{
  "tipo_decisao": "string",
  "resultado": "deferido | indeferido | parcialmente_deferido | revogado | mantido | outro",
  "fundamentos": ["string"],
  "medidas_determinadas": ["string"],
  "prazo": "string ou null",
  "reu_preso": false,
  "juiz": "string ou null",
  "vara": "string ou null",
  "data_decisao": "YYYY-MM-DD ou null",
  "numero_processo": "string ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"tipo_decisao":         text(),
		"resultado":            text(),
		"fundamentos":          texts(),
		"medidas_determinadas": texts(),
		"prazo":                text(),
		"reu_preso":            flag(),
		"juiz":                 text(),
		"vara":                 text(),
		"data_decisao":         text(),
		"numero_processo":      text(),
		"confidence":           confidence(),
	}),
}

// Laudo extracts an expert report.
var Laudo = &Schema{
	ID: "laudo",
	Task: `TAREFA: Extrair os dados de um LAUDO PERICIAL.

Extraia o tipo de laudo, peritos, datas, um resumo objetivo da conclusão, se a
conclusão favorece a defesa e os pontos críticos que a defesa deve explorar
(contradições, omissões, margem de dúvida, cadeia de custódia, tempo entre fato
e perícia). Inclua dados específicos do tipo (substâncias, causa da morte,
lesões, instrumento) e quesitos respondidos.`,
	Shape: `{
  "tipo_laudo": "toxicologico | necroscopico | medico_legal | balistico | papiloscopia | local_crime | psiquiatrico | psicologico | contabil | outro",
  "peritos": ["string"],
  "data_pericia": "YYYY-MM-DD ou null",
  "data_laudo": "YYYY-MM-DD ou null",
  "conclusao_resumo": "string (max 500 chars)",
  "conclusao_favoravel_defesa": true,
  "pontos_criticos": ["string"],
  "substancias_encontradas": ["string"],
  "causa_mortis": "string ou null",
  "instrumento_utilizado": "string ou null",
  "lesoes_descritas": ["string"],
  "quesitos_respondidos": [{"quesito": "string", "resposta": "string"}],
  "numero_processo": "string ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"tipo_laudo":                 text(),
		"peritos":                    texts(),
		"data_pericia":               text(),
		"data_laudo":                 text(),
		"conclusao_resumo":           text(),
		"conclusao_favoravel_defesa": flag(),
		"pontos_criticos":            texts(),
		"substancias_encontradas":    texts(),
		"causa_mortis":               text(),
		"instrumento_utilizado":      text(),
		"lesoes_descritas":           texts(),
		"quesitos_respondidos": list(object(map[string]any{
			"quesito": text(), "resposta": text(),
		})),
		"numero_processo": text(),
		"confidence":      confidence(),
	}),
}

// Certidao extracts a certificate.
var Certidao = &Schema{
	ID: "certidao",
	Task: `TAREFA: Extrair os dados de uma CERTIDÃO.

Identifique o tipo (antecedentes criminais, trânsito em julgado, intimação,
óbito, objeto e pé, outro), a pessoa a que se refere, o conteúdo certificado,
a data e o órgão emissor. Para antecedentes, liste os processos mencionados.`,
	Shape: `{
  "tipo_certidao": "antecedentes | transito_julgado | intimacao | obito | objeto_pe | outro",
  "pessoa": "string ou null",
  "conteudo_resumo": "string (max 300 chars)",
  "processos_mencionados": ["string"],
  "data_certidao": "YYYY-MM-DD ou null",
  "orgao_emissor": "string ou null",
  "numero_processo": "string ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"tipo_certidao":         text(),
		"pessoa":                text(),
		"conteudo_resumo":       text(),
		"processos_mencionados": texts(),
		"data_certidao":         text(),
		"orgao_emissor":         text(),
		"numero_processo":       text(),
		"confidence":            confidence(),
	}),
}

// Notices extracts notices (intimações) from text pasted from the court system.
var Notices = &Schema{
	ID: "intimacoes",
	Task: `TAREFA: Extrair todas as intimações de um texto copiado do PJe.

Cada expediente aparece duas vezes (resumo e detalhe): não duplique, cada
processo é uma intimação. O nome acima do tipo de documento é o INTIMADO, que
pode ser um corréu diferente do réu principal da linha "X".

Urgência:
- critical: réu preso e prazo vencendo
- high: réu preso ou prazo menor que 3 dias
- medium: prazo menor que 10 dias
- low: demais casos ou simples ciência

Marque reu_preso quando houver "preso", "prisão", "flagrante", "preventiva" ou
"custodiado". Ignore linhas de navegação como "Último movimento" e
"Você tomou ciência".`,
	Shape: `{
  "intimacoes": [
    {
      "numero_processo": "string",
      "vara": "string",
      "comarca": "string",
      "atribuicao": "JURI | VD | EP | CRIMINAL | CIVEL | INFANCIA",
      "intimado": "string",
      "reu_principal": "string ou null",
      "correus": ["string"],
      "vitima": "string ou null",
      "parte_autora": "string",
      "crime": "string",
      "artigos": ["string"],
      "qualificadoras": ["string"],
      "fase_processual": "inquerito | denuncia | instrucao | alegacoes_finais | sentenca | recurso | execucao | cumprimento",
      "tipo_documento": "string",
      "tipo_expedicao": "string",
      "tipo_prazo": "ciencia | peticionar | audiencia | cumprimento | outro",
      "data_limite": "YYYY-MM-DD ou null",
      "dias_prazo": 0,
      "reu_preso": false,
      "texto_expediente": "string (max 200 chars)",
      "urgencia": "low | medium | high | critical",
      "confidence": 0.0
    }
  ],
  "total_encontradas": 0,
  "resumo": "string",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"intimacoes": list(object(map[string]any{
			"numero_processo":  text(),
			"vara":             text(),
			"comarca":          text(),
			"atribuicao":       text(),
			"intimado":         text(),
			"reu_principal":    text(),
			"correus":          texts(),
			"vitima":           text(),
			"parte_autora":     text(),
			"crime":            text(),
			"artigos":          texts(),
			"qualificadoras":   texts(),
			"fase_processual":  text(),
			"tipo_documento":   text(),
			"tipo_expedicao":   text(),
			"tipo_prazo":       text(),
			"data_limite":      text(),
			"dias_prazo":       number(),
			"reu_preso":        flag(),
			"texto_expediente": text(),
			"urgencia":         text(),
			"confidence":       confidence(),
		})),
		"total_encontradas": number(),
		"resumo":            text(),
		"confidence":        confidence(),
	}, "intimacoes"),
}

// Transcript analyses an interview transcript.
var Transcript = &Schema{
	ID: "transcricao",
	Task: `TAREFA: Analisar a transcrição de um atendimento entre defensor(a) e assistido(a).

Extraia de 5 a 10 pontos-chave, os fatos narrados (controverso quando é versão
do assistido que pode ser contestada, incontroverso quando não há disputa), as
pessoas mencionadas com seu papel e utilidade para a defesa, a versão do
assistido, contradições, providências concretas e teses defensivas possíveis.

Urgência:
- critical: assistido preso, audiência em menos de 48h, prisão iminente
- high: prazo processual próximo, réu ameaçado
- medium: providência necessária sem urgência imediata
- low: atendimento de rotina`,
	Shape: `{
  "key_points": ["string"],
  "facts": [
    {"descricao": "string", "tipo": "controverso | incontroverso", "confidence": 0.0,
     "data_fato": "YYYY-MM-DD ou null", "relevancia": "string"}
  ],
  "persons_mentioned": [
    {"nome": "string", "papel": "testemunha | correu | vitima | familiar | policial | perito | outro",
     "descricao": "string", "util_para_defesa": true}
  ],
  "versao_do_assistido": "string (max 300 chars)",
  "contradictions": ["string"],
  "suggested_actions": ["string"],
  "teses_possiveis": ["string"],
  "urgency_level": "low | medium | high | critical",
  "urgency_reason": "string ou null",
  "resumo_para_prontuario": "string (max 500 chars)",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"key_points": texts(),
		"facts": list(object(map[string]any{
			"descricao":  text(),
			"tipo":       text(),
			"confidence": confidence(),
			"data_fato":  text(),
			"relevancia": text(),
		})),
		"persons_mentioned": list(object(map[string]any{
			"nome":             text(),
			"papel":            text(),
			"descricao":        text(),
			"util_para_defesa": flag(),
		})),
		"versao_do_assistido":    text(),
		"contradictions":         texts(),
		"suggested_actions":      texts(),
		"teses_possiveis":        texts(),
		"urgency_level":          text(),
		"urgency_reason":         text(),
		"resumo_para_prontuario": text(),
		"confidence":             confidence(),
	}),
}

// Agenda extracts hearings from a hearing agenda.
var Agenda = &Schema{
	ID: "audiencias",
	Task: `TAREFA: Extrair cada audiência de uma pauta de audiências do PJe.

Tipos: instrucao, JAM, juri, admonicao, justificacao, conciliacao, custodia,
leitura_sentenca, outro. Para cada audiência extraia processo, vara, partes
(réu, vítima, juiz, promotor), data, hora, sala e se o réu está preso.
Audiência de custódia implica réu preso.`,
	Shape: `{
  "audiencias": [
    {
      "tipo": "instrucao | JAM | juri | admonicao | justificacao | conciliacao | custodia | leitura_sentenca | outro",
      "numero_processo": "string",
      "reu": "string",
      "vitima": "string ou null",
      "crime": "string ou null",
      "juiz": "string ou null",
      "promotor": "string ou null",
      "data": "YYYY-MM-DD",
      "hora": "HH:MM",
      "sala": "string ou null",
      "vara": "string ou null",
      "reu_preso": false,
      "observacoes": "string ou null",
      "confidence": 0.0
    }
  ],
  "total_encontradas": 0,
  "data_pauta": "YYYY-MM-DD ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"audiencias": list(object(map[string]any{
			"tipo":            text(),
			"numero_processo": text(),
			"reu":             text(),
			"vitima":          text(),
			"crime":           text(),
			"juiz":            text(),
			"promotor":        text(),
			"data":            text(),
			"hora":            text(),
			"sala":            text(),
			"vara":            text(),
			"reu_preso":       flag(),
			"observacoes":     text(),
			"confidence":      confidence(),
		})),
		"total_encontradas": number(),
		"data_pauta":        text(),
		"confidence":        confidence(),
	}, "audiencias"),
}

// Message triages an inbound chat message.
var Message = &Schema{
	ID: "mensagem",
	Task: `TAREFA: Fazer a triagem de uma mensagem recebida por WhatsApp.

Classifique o assunto (pedido_informacao, relato_fato, documentacao,
agendamento, outro) e a urgência (critical quando há prisão em curso ou
audiência iminente, high para prazo próximo ou ameaça, medium quando requer
providência, low nos demais casos). Extraia dados úteis mencionados (nomes,
números de processo, datas) e sugira uma resposta curta e cordial.`,
	Shape: `{
  "urgency_level": "low | medium | high | critical",
  "urgency_reason": "string ou null",
  "subject": "pedido_informacao | relato_fato | documentacao | agendamento | outro",
  "resumo": "string (max 200 chars)",
  "extracted_info": {
    "nomes": ["string"],
    "numeros_processo": ["string"],
    "datas": ["string"]
  },
  "suggested_response": "string ou null",
  "confidence": 0.0
}`,
	Definition: object(map[string]any{
		"urgency_level":      text(),
		"urgency_reason":     text(),
		"subject":            text(),
		"resumo":             text(),
		"extracted_info":     anyObject(),
		"suggested_response": text(),
		"confidence":         confidence(),
	}),
}

// All lists every schema, for start-up checks.
var All = []*Schema{Classifier, Sentenca, Decisao, Laudo, Certidao, Notices, Transcript, Agenda, Message}
